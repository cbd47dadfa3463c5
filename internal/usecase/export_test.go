package usecase

import "time"

func (uc *ApprovalUseCase) SetClock(now func() time.Time) { uc.now = now }
func (uc *LedgerUseCase) SetClock(now func() time.Time) { uc.now = now }
func (uc *VendorPaymentUseCase) SetClock(now func() time.Time) { uc.now = now }
func (uc *LiabilityUseCase) SetClock(now func() time.Time) { uc.now = now }
func (uc *SalaryUseCase) SetClock(now func() time.Time) { uc.now = now }
