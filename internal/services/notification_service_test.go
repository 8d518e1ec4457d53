package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"assetadmin/internal/models"
	"assetadmin/pkg/logger"
	"assetadmin/pkg/sms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to       string
	template string
	data     map[string]interface{}
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, recipient, template string, data any) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: recipient, template: template, data: data.(map[string]interface{})})
	return nil
}

type fakeSMS struct {
	requests []*sms.SMSRequest
	err      error
}

func (f *fakeSMS) SendSMS(_ context.Context, req *sms.SMSRequest) (*sms.SMSResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	return &sms.SMSResponse{MessageID: "m1", Status: "queued"}, nil
}

func (f *fakeSMS) Name() string { return "fake" }

func TestSendResetCodeUsesBothChannels(t *testing.T) {
	mailer := &fakeMailer{}
	texts := &fakeSMS{}
	svc := NewNotificationService(mailer, texts, logger.NewNop())

	w := &models.Wallet{WalletAddress: "lw420flpfs", Email: "a@example.com", MobileNo: "+15550000000"}
	err := svc.SendResetCode(context.Background(), w, "123456", time.Now().Add(time.Minute))
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "forgot_password", mailer.sent[0].template)
	assert.Equal(t, "123456", mailer.sent[0].data["Code"])
	assert.Equal(t, "lw420flpfs", mailer.sent[0].data["Name"])

	require.Len(t, texts.requests, 1)
	assert.Equal(t, "otp", texts.requests[0].Type)
	assert.Contains(t, texts.requests[0].Message, "123456")
}

func TestSendResetCodeOneChannelIsEnough(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	texts := &fakeSMS{}
	svc := NewNotificationService(mailer, texts, logger.NewNop())

	w := &models.Wallet{Email: "a@example.com", MobileNo: "+15550000000"}
	assert.NoError(t, svc.SendResetCode(context.Background(), w, "1", time.Now()))
}

func TestSendResetCodeFailures(t *testing.T) {
	svc := NewNotificationService(nil, nil, logger.NewNop())
	err := svc.SendResetCode(context.Background(), &models.Wallet{Email: "a@example.com"}, "1", time.Now())
	assert.ErrorIs(t, err, ErrNoDeliveryChannel)

	down := errors.New("smtp down")
	svc = NewNotificationService(&fakeMailer{err: down}, nil, logger.NewNop())
	err = svc.SendResetCode(context.Background(), &models.Wallet{Email: "a@example.com"}, "1", time.Now())
	assert.ErrorIs(t, err, down)
}

func TestSendPasswordChanged(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, nil, logger.NewNop())

	require.NoError(t, svc.SendPasswordChanged(context.Background(), &models.Wallet{Email: "a@example.com"}, time.Now()))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "password_reset", mailer.sent[0].template)

	require.NoError(t, svc.SendPasswordChanged(context.Background(), &models.Wallet{}, time.Now()))
	assert.Len(t, mailer.sent, 1)
}
