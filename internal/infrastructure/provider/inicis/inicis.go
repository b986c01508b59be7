package inicis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/amondhq/billing-service/internal/config"
	"github.com/amondhq/billing-service/internal/domain/provider"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// resultCodeSuccess is the documented INICIS success sentinel. Any other
// result code, including ones not seen before, is a failure.
const resultCodeSuccess = "00"

const requestTimeout = 30 * time.Second

// InicisProvider charges stored billing keys through the INICIS v2
// billing API.
type InicisProvider struct {
	cfg    config.InicisConfig
	client *http.Client
	logger *zap.Logger
}

func NewInicisProvider(cfg config.InicisConfig, logger *zap.Logger) *InicisProvider {
	return &InicisProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

func (p *InicisProvider) Name() string {
	return "inicis"
}

// billingDetail is the INICIS `data` object. Field order and names follow
// the INICIS v2 billing documentation.
type billingDetail struct {
	URL              string `json:"url"`
	Moid             string `json:"moid"`
	GoodName         string `json:"goodName"`
	BuyerName        string `json:"buyerName"`
	BuyerEmail       string `json:"buyerEmail"`
	BuyerTel         string `json:"buyerTel"`
	Price            string `json:"price"`
	BillKey          string `json:"billKey"`
	Authentification string `json:"authentification"`
	CardQuota        string `json:"cardQuota"`
	QuotaInterest    string `json:"quotaInterest"`
}

type billingRequest struct {
	MID       string          `json:"mid"`
	Type      string          `json:"type"`
	Paymethod string          `json:"paymethod"`
	Timestamp string          `json:"timestamp"`
	ClientIP  string          `json:"clientIp"`
	HashData  string          `json:"hashData"`
	Data      json.RawMessage `json:"data"`
}

// Charge submits one billing-key charge. Transport failures and non-2xx
// responses are normalized into failed ChargeResults carrying a synthetic
// result code, so the caller always has something to log; a non-nil error
// is returned only when the request could not be built.
func (p *InicisProvider) Charge(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeResult, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	moid := newOrderNumber(req.UserID)

	detail := billingDetail{
		URL:              p.cfg.SiteURL,
		Moid:             moid,
		GoodName:         req.GoodName,
		BuyerName:        req.BuyerName,
		BuyerEmail:       req.BuyerEmail,
		BuyerTel:         req.BuyerTel,
		Price:            req.Amount.String(),
		BillKey:          req.BillingKey,
		Authentification: "00",
		CardQuota:        "00",
		QuotaInterest:    "0",
	}

	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    "MARSHAL_ERROR",
			Message: "failed to prepare billing detail",
			Details: err.Error(),
		}
	}

	// The hash covers the exact detail bytes sent on the wire
	body := billingRequest{
		MID:       p.cfg.MID,
		Type:      "billing",
		Paymethod: "Card",
		Timestamp: timestamp,
		ClientIP:  "127.0.0.1",
		HashData:  signRequest(p.cfg.APIKey, p.cfg.MID, timestamp, detailJSON),
		Data:      detailJSON,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    "MARSHAL_ERROR",
			Message: "failed to prepare billing request",
			Details: err.Error(),
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "failed to create request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Content-Type", "application/json;charset=utf-8")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Warn("inicis billing request failed",
			zap.String("moid", moid),
			zap.Error(err))
		return &provider.ChargeResult{
			Success:       false,
			OrderNumber:   moid,
			ResultCode:    provider.ResultCodeNetworkError,
			ResultMessage: err.Error(),
		}, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		p.logger.Warn("inicis response read failed",
			zap.String("moid", moid),
			zap.Error(err))
		return &provider.ChargeResult{
			Success:       false,
			OrderNumber:   moid,
			ResultCode:    provider.ResultCodeNetworkError,
			ResultMessage: err.Error(),
		}, nil
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("inicis billing returned non-200",
			zap.String("moid", moid),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return &provider.ChargeResult{
			Success:       false,
			OrderNumber:   moid,
			ResultCode:    provider.ResultCodeHTTPError,
			ResultMessage: fmt.Sprintf("gateway returned status %d", resp.StatusCode),
			RawResponse:   string(respBody),
		}, nil
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		p.logger.Warn("inicis response parse failed",
			zap.String("moid", moid),
			zap.String("response", string(respBody)))
		return &provider.ChargeResult{
			Success:       false,
			OrderNumber:   moid,
			ResultCode:    provider.ResultCodeHTTPError,
			ResultMessage: "unparseable gateway response",
			RawResponse:   string(respBody),
		}, nil
	}

	resultCode := getStringFromMap(parsed, "resultCode")
	result := &provider.ChargeResult{
		Success:       resultCode == resultCodeSuccess,
		OrderNumber:   moid,
		ResultCode:    resultCode,
		ResultMessage: getStringFromMap(parsed, "resultMsg"),
		RawResponse:   string(respBody),
	}

	if result.Success {
		p.logger.Info("inicis billing charge approved",
			zap.String("moid", moid),
			zap.Int64("user_id", req.UserID))
	} else {
		p.logger.Warn("inicis billing charge rejected",
			zap.String("moid", moid),
			zap.Int64("user_id", req.UserID),
			zap.String("result_code", resultCode),
			zap.String("result_msg", result.ResultMessage))
	}

	return result, nil
}

// newOrderNumber generates an order reference unique per attempt: even a
// retried business operation must not collide with a prior attempt's
// reference at the gateway.
func newOrderNumber(userID int64) string {
	return fmt.Sprintf("AMOND_AUTO_%d_%d_%s", userID, time.Now().UnixMilli(), uuid.NewString()[:8])
}

func getStringFromMap(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
