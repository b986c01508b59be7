package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amondhq/billing-service/internal/config"
	"go.uber.org/zap"
)

// Sender dispatches one completion notification
type Sender interface {
	SendCompletionNotice(ctx context.Context, to, projectName string) error
}

// EmailJSClient sends notification mail through the EmailJS HTTP API.
// Fire-and-forget from the caller's perspective; delivery state tracking
// stays in the notification table.
type EmailJSClient struct {
	cfg    config.EmailConfig
	client *http.Client
	logger *zap.Logger
}

func NewEmailJSClient(cfg config.EmailConfig, logger *zap.Logger) *EmailJSClient {
	return &EmailJSClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (c *EmailJSClient) SendCompletionNotice(ctx context.Context, to, projectName string) error {
	body := sendRequest{
		ServiceID:  c.cfg.ServiceID,
		TemplateID: c.cfg.TemplateID,
		UserID:     c.cfg.UserID,
		TemplateParams: map[string]string{
			"message_type": "이미지 생성 완료 알림",
			"message": fmt.Sprintf("안녕하세요!\n\n요청하신 %q 프로젝트의 이미지 생성이 완료되었습니다.\n\n"+
				"Amond 사이트에 접속하여 생성된 콘텐츠를 확인해주세요.\n\n감사합니다.\nAmond 팀", projectName),
			"name":     "Amond System",
			"email":    to,
			"to_email": to,
			"time":     time.Now().Format("2006-01-02 15:04:05"),
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to prepare email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("email dispatch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Warn("emailjs returned non-200",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return fmt.Errorf("email dispatch returned status %d", resp.StatusCode)
	}

	c.logger.Info("completion notice sent", zap.String("to", to))
	return nil
}
