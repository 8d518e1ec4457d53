package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assetadmin/internal/models"
	"assetadmin/internal/utils"
	"assetadmin/pkg/email"
	"assetadmin/pkg/logger"
	"assetadmin/pkg/sms"
)

var ErrNoDeliveryChannel = errors.New("no delivery channel for wallet")

// NotificationService delivers password reset codes and confirmations.
type NotificationService interface {
	SendResetCode(ctx context.Context, wallet *models.Wallet, code string, expiresAt time.Time) error
	SendPasswordChanged(ctx context.Context, wallet *models.Wallet, changedAt time.Time) error
}

type notificationService struct {
	mailer email.Sender
	sms    sms.SMSProvider
	logger *logger.Logger
}

// NewNotificationService accepts nil for a disabled mailer or SMS provider.
func NewNotificationService(mailer email.Sender, smsProvider sms.SMSProvider, log *logger.Logger) NotificationService {
	return &notificationService{
		mailer: mailer,
		sms:    smsProvider,
		logger: log,
	}
}

func displayName(w *models.Wallet) string {
	if w.WalletAddress != "" {
		return w.WalletAddress
	}
	return w.Email
}

// SendResetCode succeeds when at least one channel delivered the code.
func (s *notificationService) SendResetCode(ctx context.Context, wallet *models.Wallet, code string, expiresAt time.Time) error {
	var errs []error
	delivered := false

	if s.mailer != nil && wallet.Email != "" {
		err := s.mailer.Send(ctx, wallet.Email, "forgot_password", map[string]interface{}{
			"Name":       displayName(wallet),
			"Code":       code,
			"ExpireTime": expiresAt.Format(time.RFC1123),
		})
		if err != nil {
			s.logger.WithError(err).WithField("email", utils.MaskEmail(wallet.Email)).Warn("Failed to email reset code")
			errs = append(errs, err)
		} else {
			delivered = true
		}
	}

	if s.sms != nil && wallet.MobileNo != "" {
		_, err := s.sms.SendSMS(ctx, &sms.SMSRequest{
			To:      wallet.MobileNo,
			Message: fmt.Sprintf("Your password reset code is %s. It expires at %s.", code, expiresAt.Format(time.Kitchen)),
			Type:    "otp",
		})
		if err != nil {
			s.logger.WithError(err).WithField("mobile", utils.MaskPhone(wallet.MobileNo)).Warn("Failed to text reset code")
			errs = append(errs, err)
		} else {
			delivered = true
		}
	}

	if delivered {
		return nil
	}
	if len(errs) == 0 {
		return ErrNoDeliveryChannel
	}
	return errors.Join(errs...)
}

func (s *notificationService) SendPasswordChanged(ctx context.Context, wallet *models.Wallet, changedAt time.Time) error {
	if s.mailer == nil || wallet.Email == "" {
		return nil
	}
	return s.mailer.Send(ctx, wallet.Email, "password_reset", map[string]interface{}{
		"Name":      displayName(wallet),
		"ChangedAt": changedAt.Format(time.RFC1123),
	})
}
