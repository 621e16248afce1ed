// Package email delivers account emails. The default sender only logs the
// outgoing message, which is enough for development and for tests; real
// delivery plugs in behind the same interface.
package email

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/user"
)

var _ user.EmailSender = (*LogSender)(nil)

// LogSender implements user.EmailSender by logging instead of sending.
type LogSender struct{}

// NewLogSender returns a LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// SendVerifyEmail logs the verification token for the address.
func (s *LogSender) SendVerifyEmail(ctx context.Context, email, token string) error {
	zctx.From(ctx).Info("Verify email",
		zap.String("email", email),
		zap.String("token", token),
	)
	return nil
}

// SendResetPassword logs the reset token for the address.
func (s *LogSender) SendResetPassword(ctx context.Context, email, token string) error {
	zctx.From(ctx).Info("Reset password email",
		zap.String("email", email),
		zap.String("token", token),
	)
	return nil
}
