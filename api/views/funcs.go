package views

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/enums"
	"github.com/shopspring/decimal"
)

const maxStars = 5

func funcs() template.FuncMap {
	return template.FuncMap{
		"usd":           USD,
		"number":        Number,
		"stars":         Stars,
		"longDate":      LongDate,
		"plural":        plural,
		"selected":      selected,
		"canManage":     canManage,
		"ratingChoices": ratingChoices,
	}
}

// USD formats amount as US dollars with thousands separators. Cents are shown only when present.
func USD(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	amount = amount.Round(2)
	whole := amount.Truncate(0)
	out := sign + "$" + groupThousands(whole.String())

	cents := amount.Sub(whole)
	if !cents.IsZero() {
		frac := strings.TrimPrefix(cents.StringFixed(2), "0")
		out += strings.TrimRight(frac, "0")
	}
	return out
}

// Number formats n with thousands separators.
func Number(n int) string {
	if n < 0 {
		return "-" + groupThousands(strconv.Itoa(-n))
	}
	return groupThousands(strconv.Itoa(n))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Stars renders rating as five filled or empty stars.
func Stars(rating int) template.HTML {
	var b strings.Builder
	for i := 1; i <= maxStars; i++ {
		if i <= rating {
			b.WriteString(`<span class="star filled">&#9733;</span>`)
		} else {
			b.WriteString(`<span class="star">&#9734;</span>`)
		}
	}
	return template.HTML(b.String())
}

// LongDate formats t like "March 1, 2025".
func LongDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func selected(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func canManage(identity auth.Identity) bool {
	return identity.IsAuthenticated() &&
		(identity.Role == enums.AccountTypeEmployee || identity.Role == enums.AccountTypeAdmin)
}

func ratingChoices() []int {
	out := make([]int, maxStars)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
