package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CheckoutForm 结算表单。卡号/CVV 只做格式校验，不发生真实扣款。
type CheckoutForm struct {
	CardHolderName  string `json:"card_holder_name"`
	Email           string `json:"email"`
	CardNumber      string `json:"card_number"`
	ExpiryDate      string `json:"expiry_date"` // MM/YY
	CVV             string `json:"cvv"`
	ShippingAddress string `json:"shipping_address"`
	City            string `json:"city"`
	State           string `json:"state"`
	PostalCode      string `json:"postal_code"`
	Country         string `json:"country"`
	Phone           string `json:"phone"`
	ShippingCost    int64  `json:"shipping_cost"` // 分，缺省 0
}

var (
	holderPattern = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// validateCheckoutForm 校验所有字段并一次性返回全部不合法字段。
// 任何写操作之前执行，失败时无任何副作用。
func validateCheckoutForm(form *CheckoutForm, now time.Time) *ValidationError {
	var fields []string

	holder := strings.TrimSpace(form.CardHolderName)
	if len(holder) < 3 || !holderPattern.MatchString(holder) {
		fields = append(fields, "card_holder_name")
	}

	if !emailPattern.MatchString(form.Email) {
		fields = append(fields, "email")
	}

	card := strings.ReplaceAll(form.CardNumber, " ", "")
	if !digitsPattern.MatchString(card) || len(card) < 13 || len(card) > 19 {
		fields = append(fields, "card_number")
	}

	if !validExpiry(form.ExpiryDate, now) {
		fields = append(fields, "expiry_date")
	}

	if !cvvPattern.MatchString(form.CVV) {
		fields = append(fields, "cvv")
	}

	if len(strings.TrimSpace(form.ShippingAddress)) < 10 {
		fields = append(fields, "shipping_address")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validExpiry 校验 MM/YY 格式、未过期且不超过 20 年以后
func validExpiry(expiry string, now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(expiry)
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	year += 2000

	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return false
	}
	if year > now.Year()+20 {
		return false
	}
	return true
}

// cardLast4 返回卡号后四位，入库时只保留这部分
func cardLast4(cardNumber string) string {
	card := strings.ReplaceAll(cardNumber, " ", "")
	if len(card) < 4 {
		return card
	}
	return card[len(card)-4:]
}
