package inicis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amondhq/billing-service/internal/config"
	"github.com/amondhq/billing-service/internal/domain/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(apiURL string) *InicisProvider {
	return NewInicisProvider(config.InicisConfig{
		MID:     "INIBillTst",
		APIKey:  "rKnPljRn5m6J9Mzz",
		APIURL:  apiURL,
		SiteURL: "https://mond.io.kr",
	}, zap.NewNop())
}

func testChargeRequest() *provider.ChargeRequest {
	return &provider.ChargeRequest{
		UserID:     42,
		BillingKey: "bill-key-token",
		Amount:     decimal.NewFromInt(9900),
		GoodName:   "프로 멤버십 월간 구독",
		BuyerName:  "홍길동",
		BuyerEmail: "buyer@example.com",
		BuyerTel:   "01012345678",
	}
}

func TestInicisProviderCharge(t *testing.T) {
	t.Run("result code 00 is a success", func(t *testing.T) {
		var captured billingRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &captured))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"resultCode":"00","resultMsg":"정상처리","tid":"tid-123"}`))
		}))
		defer server.Close()

		p := newTestProvider(server.URL)
		result, err := p.Charge(context.Background(), testChargeRequest())

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "00", result.ResultCode)
		assert.Equal(t, "정상처리", result.ResultMessage)
		assert.Contains(t, result.RawResponse, "tid-123")

		// Request shape
		assert.Equal(t, "INIBillTst", captured.MID)
		assert.Equal(t, "billing", captured.Type)
		assert.Equal(t, "Card", captured.Paymethod)
		assert.Len(t, captured.HashData, 128)

		var detail billingDetail
		require.NoError(t, json.Unmarshal(captured.Data, &detail))
		assert.Equal(t, "bill-key-token", detail.BillKey)
		assert.Equal(t, "9900", detail.Price)
		assert.Equal(t, "00", detail.Authentification)
		assert.True(t, strings.HasPrefix(detail.Moid, "AMOND_AUTO_42_"))
		assert.Equal(t, detail.Moid, result.OrderNumber)

		// Hash must cover the exact detail bytes sent
		assert.Equal(t,
			signRequest("rKnPljRn5m6J9Mzz", "INIBillTst", captured.Timestamp, captured.Data),
			captured.HashData)
	})

	t.Run("any other result code is a failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"resultCode":"01","resultMsg":"한도초과"}`))
		}))
		defer server.Close()

		p := newTestProvider(server.URL)
		result, err := p.Charge(context.Background(), testChargeRequest())

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "01", result.ResultCode)
		assert.Equal(t, "한도초과", result.ResultMessage)
	})

	t.Run("non-200 response becomes a failed result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("gateway down"))
		}))
		defer server.Close()

		p := newTestProvider(server.URL)
		result, err := p.Charge(context.Background(), testChargeRequest())

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, provider.ResultCodeHTTPError, result.ResultCode)
		assert.NotEmpty(t, result.OrderNumber)
	})

	t.Run("connection failure becomes a failed result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // refuse connections

		p := newTestProvider(server.URL)
		result, err := p.Charge(context.Background(), testChargeRequest())

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, provider.ResultCodeNetworkError, result.ResultCode)
		assert.NotEmpty(t, result.OrderNumber)
	})

	t.Run("unparseable body becomes a failed result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		p := newTestProvider(server.URL)
		result, err := p.Charge(context.Background(), testChargeRequest())

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, provider.ResultCodeHTTPError, result.ResultCode)
	})
}

func TestNewOrderNumber(t *testing.T) {
	t.Run("unique per attempt", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			moid := newOrderNumber(7)
			assert.True(t, strings.HasPrefix(moid, "AMOND_AUTO_7_"))
			assert.False(t, seen[moid], "duplicate moid %s", moid)
			seen[moid] = true
		}
	})
}
