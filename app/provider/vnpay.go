package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0xBoji/realty-payments/app/entity"
	"github.com/0xBoji/realty-payments/app/signature"
)

const (
	vnpVersion     = "2.1.0"
	vnpCommandPay  = "pay"
	vnpCodeSuccess = "00"

	defaultOrderType = "billpayment"
	defaultClientIP  = "127.0.0.1"

	invalidSignatureMessage = "invalid signature, payload may have been tampered with"
)

// Generated references are a 14-digit timestamp plus a 6-digit random suffix.
var txnRefPattern = regexp.MustCompile(`^\d{20}$`)

var vnpResponseMessages = map[string]string{
	"00": "Giao dich thanh cong",
	"07": "Giao dich bi nghi ngo gian lan",
	"09": "The chua dang ky Internet Banking",
	"10": "Xac thuc sai qua 3 lan",
	"11": "Het han cho thanh toan",
	"12": "Tai khoan bi khoa",
	"13": "Sai mat khau OTP",
	"24": "Khach hang huy giao dich",
	"51": "Tai khoan khong du so du",
	"65": "Vuot qua han muc giao dich trong ngay",
	"75": "Ngan hang dang bao tri",
	"79": "Sai mat khau thanh toan qua so lan quy dinh",
	"99": "Loi khac",
}

type VNPayConfig struct {
	TmnCode     string
	HashSecret  string
	PayURL      string
	QueryURL    string
	ReturnURL   string
	Locale      string
	HTTPTimeout time.Duration
}

type VNPayProvider struct {
	cfg    VNPayConfig
	client *http.Client
	now    func() time.Time
}

func NewVNPayProvider(cfg VNPayConfig) *VNPayProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.Locale) == "" {
		cfg.Locale = "vn"
	}

	return &VNPayProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

func (p *VNPayProvider) Code() string {
	return entity.MethodVNPay
}

// CreateCheckout builds the signed redirect URL. Each call generates a fresh
// transaction reference: two identical requests are two distinct attempts.
func (p *VNPayProvider) CreateCheckout(_ context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	if input.AmountVND <= 0 {
		return nil, entity.NewPaymentError(entity.ErrTypeValidation, "amount must be positive")
	}

	now := p.now()
	txnRef := newTxnRef(now)

	orderInfo := strings.TrimSpace(input.Description)
	if orderInfo == "" {
		orderInfo = "Thanh toan goi " + input.PlanID
	}
	orderType := strings.TrimSpace(input.OrderType)
	if orderType == "" {
		orderType = defaultOrderType
	}
	clientIP := strings.TrimSpace(input.ClientIP)
	if clientIP == "" {
		clientIP = defaultClientIP
	}

	params := map[string]string{
		"vnp_Version":    vnpVersion,
		"vnp_Command":    vnpCommandPay,
		"vnp_TmnCode":    p.cfg.TmnCode,
		"vnp_Locale":     p.cfg.Locale,
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     txnRef,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  orderType,
		"vnp_Amount":     strconv.FormatInt(int64(math.Round(input.AmountVND*100)), 10),
		"vnp_ReturnUrl":  p.cfg.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format("20060102150405"),
	}

	hash := signature.Sign(params, p.cfg.HashSecret)
	query := canonicalQuery(params)

	return &CheckoutOutput{
		Reference:  txnRef,
		PaymentURL: p.cfg.PayURL + "?" + query + "&" + signature.SecureHashField + "=" + hash,
		Currency:   "VND",
		Amount:     input.AmountVND,
	}, nil
}

// VerifyReturn checks the signature first, then the gateway's response code
// and transaction status. The two checks are orthogonal: an authentic payload
// with a failure code is a verified decline, not a tamper.
func (p *VNPayProvider) VerifyReturn(params map[string]string) *entity.PaymentOutcome {
	if !signature.Verify(params, p.cfg.HashSecret) {
		return &entity.PaymentOutcome{
			Success:      false,
			Message:      invalidSignatureMessage,
			Reference:    params["vnp_TxnRef"],
			ResponseCode: "97",
		}
	}

	respCode := params["vnp_ResponseCode"]
	status := params["vnp_TransactionStatus"]
	success := respCode == vnpCodeSuccess && status == vnpCodeSuccess

	outcome := &entity.PaymentOutcome{
		Success:       success,
		Message:       ResponseCodeMessage(respCode),
		TransactionID: params["vnp_TransactionNo"],
		Reference:     params["vnp_TxnRef"],
		Currency:      "VND",
		OrderInfo:     params["vnp_OrderInfo"],
		BankCode:      params["vnp_BankCode"],
		PayDate:       params["vnp_PayDate"],
		ResponseCode:  respCode,
		Status:        status,
	}
	if raw := params["vnp_Amount"]; raw != "" {
		if minor, err := strconv.ParseInt(raw, 10, 64); err == nil {
			outcome.Amount = float64(minor) / 100
		}
	}
	return outcome
}

// VerifyIPN runs the same verification as the return redirect. The IPN path
// is authoritative when the two disagree, since the browser never sees it.
func (p *VNPayProvider) VerifyIPN(params map[string]string) *entity.PaymentOutcome {
	return p.VerifyReturn(params)
}

// SignatureValid reports only the authenticity check, used by the IPN handler
// to pick the right acknowledgment code.
func (p *VNPayProvider) SignatureValid(params map[string]string) bool {
	return signature.Verify(params, p.cfg.HashSecret)
}

// QueryTransaction asks the gateway's query API for a transaction's state.
// Its signature covers a pipe-joined field tuple, not the sorted query string
// used by the pay flow; the two schemes are deliberately kept separate.
func (p *VNPayProvider) QueryTransaction(ctx context.Context, txnRef, transactionDate string) (*entity.PaymentOutcome, error) {
	now := p.now()
	requestID := uuid.NewString()
	createDate := now.Format("20060102150405")
	orderInfo := "Truy van giao dich " + txnRef

	payload := map[string]string{
		"vnp_RequestId":       requestID,
		"vnp_Version":         vnpVersion,
		"vnp_Command":         "querydr",
		"vnp_TmnCode":         p.cfg.TmnCode,
		"vnp_TxnRef":          txnRef,
		"vnp_OrderInfo":       orderInfo,
		"vnp_TransactionDate": transactionDate,
		"vnp_CreateDate":      createDate,
		"vnp_IpAddr":          defaultClientIP,
	}
	payload["vnp_SecureHash"] = querySignature(p.cfg.HashSecret,
		requestID, vnpVersion, "querydr", p.cfg.TmnCode, txnRef,
		transactionDate, createDate, defaultClientIP, orderInfo,
	)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.QueryURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, entity.WrapPaymentError(entity.ErrTypeNetwork, "gateway query timed out", err)
		}
		return nil, entity.WrapPaymentError(entity.ErrTypeNetwork, "gateway query failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, entity.NewPaymentErrorWithCode(entity.ErrTypeGateway,
			fmt.Sprintf("gateway query returned status %d", resp.StatusCode), strconv.Itoa(resp.StatusCode))
	}

	var result struct {
		ResponseCode      string `json:"vnp_ResponseCode"`
		TransactionStatus string `json:"vnp_TransactionStatus"`
		TransactionNo     string `json:"vnp_TransactionNo"`
		TxnRef            string `json:"vnp_TxnRef"`
		Amount            string `json:"vnp_Amount"`
		OrderInfo         string `json:"vnp_OrderInfo"`
		PayDate           string `json:"vnp_PayDate"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, entity.WrapPaymentError(entity.ErrTypeGateway, "gateway query response could not be parsed", err)
	}

	outcome := &entity.PaymentOutcome{
		Success:       result.ResponseCode == vnpCodeSuccess && result.TransactionStatus == vnpCodeSuccess,
		Message:       ResponseCodeMessage(result.ResponseCode),
		TransactionID: result.TransactionNo,
		Reference:     result.TxnRef,
		Currency:      "VND",
		OrderInfo:     result.OrderInfo,
		PayDate:       result.PayDate,
		ResponseCode:  result.ResponseCode,
		Status:        result.TransactionStatus,
	}
	if minor, err := strconv.ParseInt(result.Amount, 10, 64); err == nil {
		outcome.Amount = float64(minor) / 100
	}
	return outcome, nil
}

// ResponseCodeMessage maps a gateway response code to a human-readable
// message. Unknown codes never crash the flow.
func ResponseCodeMessage(code string) string {
	if msg, ok := vnpResponseMessages[code]; ok {
		return msg
	}
	return "Loi khong xac dinh (ma " + code + ")"
}

// ClassifyResponseCode maps a gateway decline code into the error taxonomy.
func ClassifyResponseCode(code string) entity.PaymentErrorType {
	switch code {
	case "07":
		return entity.ErrTypeFraudDetected
	case "51", "65":
		return entity.ErrTypeInsufficientFunds
	case "09", "10", "12", "13", "24", "79":
		return entity.ErrTypeCardDeclined
	case "11", "75":
		return entity.ErrTypeGateway
	default:
		return entity.ErrTypeGateway
	}
}

// ValidTxnRef reports whether a reference has the generated shape.
func ValidTxnRef(ref string) bool {
	return txnRefPattern.MatchString(ref)
}

// IsInvalidSignature distinguishes a tamper verdict from a provider decline
// so the UI can warn instead of offering a retry.
func IsInvalidSignature(outcome *entity.PaymentOutcome) bool {
	return outcome != nil && !outcome.Success && outcome.ResponseCode == "97"
}

func newTxnRef(now time.Time) string {
	var raw [4]byte
	_, _ = rand.Read(raw[:])
	suffix := binary.BigEndian.Uint32(raw[:]) % 1_000_000
	return now.Format("20060102150405") + fmt.Sprintf("%06d", suffix)
}

// canonicalQuery renders params exactly as they were signed.
func canonicalQuery(params map[string]string) string {
	keys, encoded := signature.SortAndEncode(params)
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(encoded[key])
	}
	return b.String()
}

func querySignature(secret string, fields ...string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
