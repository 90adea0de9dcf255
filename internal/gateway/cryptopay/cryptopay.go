package cryptopay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/pixelslots/crypto-backend/internal/consts"
	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
	"github.com/pixelslots/crypto-backend/internal/utils/signature"
)

const maxRetries = 3

type cryptopay struct {
	baseURL    string
	merchantID string
	apiKey     string
	client     *http.Client
	logger     *logger.Logger
}

func New(cfg *config.AppConfig, logger *logger.Logger) ICryptopay {
	return &cryptopay{
		baseURL:    cfg.Cryptopay.APIURL,
		merchantID: cfg.Cryptopay.MerchantID,
		apiKey:     cfg.Cryptopay.APIKey,
		client:     &http.Client{Timeout: cfg.Cryptopay.RequestTimeout},
		logger:     logger,
	}
}

func (c *cryptopay) CreatePayment(req *CreatePaymentRequest) (*PaymentInfo, error) {
	var info PaymentInfo
	if err := c.post("CreatePayment", "/payment", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *cryptopay) CreateWithdrawal(req *CreateWithdrawalRequest) (*WithdrawalInfo, error) {
	var info WithdrawalInfo
	if err := c.post("CreateWithdrawal", "/payout", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *cryptopay) PaymentStatus(uuid, orderID string) (*PaymentInfo, error) {
	var info PaymentInfo
	err := c.post("PaymentStatus", "/payment/info", &statusRequest{UUID: uuid, OrderID: orderID}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *cryptopay) PayoutStatus(uuid, orderID string) (*WithdrawalInfo, error) {
	var info WithdrawalInfo
	err := c.post("PayoutStatus", "/payout/info", &statusRequest{UUID: uuid, OrderID: orderID}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *cryptopay) NetworkFee(currency, network string) (decimal.Decimal, error) {
	var result feeResult
	err := c.post("NetworkFee", "/payout/fee", &feeRequest{Currency: currency, Network: network}, &result)
	if err != nil {
		return decimal.Zero, err
	}
	return result.Commission, nil
}

// post sends a signed JSON request and decodes the result envelope into out.
// Transport failures and 5xx responses are retried with a linear backoff,
// 4xx responses and provider-level rejections are returned immediately.
func (c *cryptopay) post(op, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	url := c.baseURL + path
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequest("POST", url, bytes.NewReader(body))
		if err != nil {
			return errors.Wrap(err, "failed to create request")
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(consts.MerchantHeader, c.merchantID)
		req.Header.Set(consts.SignatureHeader, signature.Compute(body, c.apiKey))
		req.Header.Set(consts.RequestIDHeader, uuid.NewString())

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = errs.NewProvider(op, 0, err)
			c.logger.Error("[post][client.Do]", map[string]string{
				"op":      op,
				"error":   err.Error(),
				"attempt": strconv.Itoa(attempt),
			})
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = errs.NewProvider(op, resp.StatusCode, err)
			c.logger.Error("[post][io.ReadAll]", map[string]string{
				"op":      op,
				"error":   err.Error(),
				"attempt": strconv.Itoa(attempt),
			})
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = errs.NewProvider(op, resp.StatusCode, fmt.Errorf("%s", respBody))
			c.logger.Error("[post] provider error", map[string]string{
				"op":         op,
				"statusCode": strconv.Itoa(resp.StatusCode),
				"attempt":    strconv.Itoa(attempt),
			})
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return errs.NewProvider(op, resp.StatusCode, fmt.Errorf("%s", respBody))
		}

		var envelope apiResponse
		if err := json.Unmarshal(respBody, &envelope); err != nil {
			return errs.NewProvider(op, resp.StatusCode, errors.Wrap(err, "failed to decode response"))
		}

		if envelope.State != 0 {
			return errs.NewProvider(op, resp.StatusCode, fmt.Errorf("state %d: %s", envelope.State, envelope.Message))
		}

		if out != nil && len(envelope.Result) > 0 {
			if err := json.Unmarshal(envelope.Result, out); err != nil {
				return errs.NewProvider(op, resp.StatusCode, errors.Wrap(err, "failed to decode result"))
			}
		}

		return nil
	}

	return lastErr
}
