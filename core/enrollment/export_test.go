package enrollment

import "time"

// SetNowFunc replaces the service clock.
func (svc *Service) SetNowFunc(now func() time.Time) { svc.nowFunc = now }
