package email

import "context"

// Provider sends outbound mail. Implementations must treat a returned
// error as "not delivered"; callers decide whether to retry.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
