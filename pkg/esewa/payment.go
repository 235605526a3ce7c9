package esewa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cassiomorais/esewa/pkg/result"
)

const (
	initiatePath = "/epay/initiate/"
	statusPath   = "/api/epay/transaction/status/"

	opInitiate = "initiate_payment"
	opStatus   = "check_payment_status"
)

// Payload is a gateway response body, passed through undecoded.
type Payload []byte

// Decode unmarshals the payload into v.
func (p Payload) Decode(v any) error {
	return json.Unmarshal(p, v)
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p Payload) String() string { return string(p) }

// StatusQuery identifies a previously initiated transaction.
type StatusQuery struct {
	ProductCode     string  `json:"product_code" validate:"required"`
	TransactionUUID string  `json:"transaction_uuid" validate:"required"`
	TotalAmount     float64 `json:"total_amount" validate:"gte=0"`
}

func (q StatusQuery) values() url.Values {
	v := url.Values{}
	v.Set("product_code", q.ProductCode)
	v.Set("total_amount", strconv.FormatFloat(q.TotalAmount, 'f', -1, 64))
	v.Set("transaction_uuid", q.TransactionUUID)
	return v
}

// InitiatePayment posts payload to the initiation endpoint and returns the
// gateway's response body. The payload is JSON-encoded as is, so a nil
// payload is sent as null; a json.RawMessage is sent byte for byte.
func (c *Client) InitiatePayment(ctx context.Context, payload any) (Payload, error) {
	return result.Capture(c.logger, opInitiate, func() (Payload, error) {
		return c.do(ctx, call{
			op:      opInitiate,
			method:  http.MethodPost,
			path:    initiatePath,
			hasBody: true,
			body:    payload,
		})
	}).Get()
}

// CheckPaymentStatus queries the state of a transaction.
func (c *Client) CheckPaymentStatus(ctx context.Context, q StatusQuery) (Payload, error) {
	return result.Capture(c.logger, opStatus, func() (Payload, error) {
		if err := validateInput(q); err != nil {
			return nil, err
		}
		return c.do(ctx, call{
			op:     opStatus,
			method: http.MethodGet,
			path:   statusPath,
			query:  q.values(),
		})
	}).Get()
}
