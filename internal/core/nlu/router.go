package nlu

import (
	"fmt"
	"math"
	"strconv"

	"github.com/KadaVoice/pos-service/internal/core/catalog"
)

// Operation is the UI-facing action code derived from an intent.
type Operation string

const (
	OpAddToCart      Operation = "add_to_cart"
	OpRemoveFromCart Operation = "remove_from_cart"
	OpShowTotal      Operation = "show_total"
	OpCompleteSale   Operation = "complete_sale"
	OpShowQR         Operation = "show_qr"
	OpCashPayment    Operation = "cash_payment"
	OpCheckStock     Operation = "check_stock"
	OpLowStockReport Operation = "low_stock_report"
	OpSalesReport    Operation = "sales_report"
	OpTodayReport    Operation = "today_report"
	OpConfirm        Operation = "confirm_action"
	OpCancel         Operation = "cancel_action"
	OpShowHelp       Operation = "show_help"
	OpGreet          Operation = "greet"
	OpNone           Operation = "none"
)

// Mode is the display panel the UI should switch to.
type Mode string

const (
	ModeBilling Mode = "billing"
	ModePayment Mode = "payment"
	ModeStock   Mode = "stock"
	ModeReport  Mode = "report"
	ModeIdle    Mode = "idle"
)

// RouterAction tells the UI what to do with a classified utterance:
// which panel to show, which operation to apply, and what to speak back.
// It describes state changes; it never performs them.
type RouterAction struct {
	Mode          Mode      `json:"mode"`
	Operation     Operation `json:"operation"`
	VoiceResponse string    `json:"voice_response"`
	Entities      Entities  `json:"entities"`
}

var intentOperations = map[Intent]Operation{
	IntentBillingAdd:      OpAddToCart,
	IntentBillingRemove:   OpRemoveFromCart,
	IntentBillingTotal:    OpShowTotal,
	IntentBillingComplete: OpCompleteSale,
	IntentPaymentUPI:      OpShowQR,
	IntentPaymentCash:     OpCashPayment,
	IntentInventoryCheck:  OpCheckStock,
	IntentInventoryLow:    OpLowStockReport,
	IntentReportSales:     OpSalesReport,
	IntentReportToday:     OpTodayReport,
	IntentConfirm:         OpConfirm,
	IntentCancel:          OpCancel,
	IntentHelp:            OpShowHelp,
	IntentGreeting:        OpGreet,
}

var operationModes = map[Operation]Mode{
	OpAddToCart:      ModeBilling,
	OpRemoveFromCart: ModeBilling,
	OpShowTotal:      ModeBilling,
	OpCompleteSale:   ModeBilling,
	OpShowQR:         ModePayment,
	OpCashPayment:    ModePayment,
	OpCheckStock:     ModeStock,
	OpLowStockReport: ModeStock,
	OpSalesReport:    ModeReport,
	OpTodayReport:    ModeReport,
}

var unitNamesMl = map[catalog.Unit]string{
	catalog.UnitKg:    "കിലോ",
	catalog.UnitGram:  "ഗ്രാം",
	catalog.UnitLitre: "ലിറ്റർ",
	catalog.UnitMl:    "മില്ലി",
	catalog.UnitPiece: "എണ്ണം",
	catalog.UnitPack:  "പാക്കറ്റ്",
}

// RouteIntent maps a classified intent to a RouterAction. It is total:
// every intent, including fallback and anything unknown, yields a
// non-crashing action, and missing entities degrade to generic phrasing.
func RouteIntent(result ClassifiedIntent) RouterAction {
	op, ok := intentOperations[result.Intent]
	if !ok {
		op = OpNone
	}

	mode, ok := operationModes[op]
	if !ok {
		mode = ModeIdle
	}

	// A cloud NLU result may carry its own fulfillment text; prefer it
	// over the local phrase library.
	response := result.FulfillmentText
	if response == "" {
		response = voiceResponse(op, result.Entities)
	}

	return RouterAction{
		Mode:          mode,
		Operation:     op,
		VoiceResponse: response,
		Entities:      result.Entities,
	}
}

func voiceResponse(op Operation, e Entities) string {
	switch op {
	case OpAddToCart:
		if !e.HasProduct() {
			return "ഏത് സാധനമാണ് ചേർക്കേണ്ടത്? ഒന്നുകൂടി പറയൂ"
		}
		if e.Quantity != nil && e.Price != nil {
			total := *e.Quantity * *e.Price
			return fmt.Sprintf("%s %s %s ബില്ലിൽ ചേർത്തു, %s രൂപ",
				FormatQuantity(*e.Quantity), unitNameMl(e.Unit), e.ProductMl, formatAmount(total))
		}
		return fmt.Sprintf("%s ബില്ലിൽ ചേർത്തു", e.ProductMl)
	case OpRemoveFromCart:
		if !e.HasProduct() {
			return "ഏത് സാധനമാണ് ഒഴിവാക്കേണ്ടത്?"
		}
		return fmt.Sprintf("%s ബില്ലിൽ നിന്ന് ഒഴിവാക്കി", e.ProductMl)
	case OpShowTotal:
		return "ആകെ തുക സ്ക്രീനിൽ കാണിച്ചിട്ടുണ്ട്"
	case OpCompleteSale:
		return "ബിൽ തയ്യാറാക്കിയിട്ടുണ്ട്"
	case OpShowQR:
		return "ക്യുആർ കോഡ് സ്കാൻ ചെയ്യൂ"
	case OpCashPayment:
		return "കാശ് വാങ്ങി ബിൽ അടച്ചു"
	case OpCheckStock:
		if e.HasProduct() {
			return fmt.Sprintf("%s സ്റ്റോക്ക് സ്ക്രീനിൽ കാണിച്ചിട്ടുണ്ട്", e.ProductMl)
		}
		return "സ്റ്റോക്ക് വിവരം സ്ക്രീനിൽ കാണിച്ചിട്ടുണ്ട്"
	case OpLowStockReport:
		return "തീരാറായ സാധനങ്ങളുടെ പട്ടിക കാണിച്ചിട്ടുണ്ട്"
	case OpSalesReport:
		return "വിൽപ്പന റിപ്പോർട്ട് കാണിച്ചിട്ടുണ്ട്"
	case OpTodayReport:
		return "ഇന്നത്തെ കണക്ക് കാണിച്ചിട്ടുണ്ട്"
	case OpConfirm:
		return "ശരി"
	case OpCancel:
		return "റദ്ദാക്കി"
	case OpShowHelp:
		return "സാധനത്തിന്റെ പേരും അളവും പറഞ്ഞാൽ ബില്ലിൽ ചേർക്കാം. ടോട്ടൽ, സ്റ്റോക്ക്, കണക്ക് എന്നിവയും ചോദിക്കാം"
	case OpGreet:
		return "നമസ്കാരം! എന്താണ് വേണ്ടത്?"
	default:
		return "ക്ഷമിക്കണം, മനസ്സിലായില്ല. ഒന്നുകൂടി പറയാമോ?"
	}
}

func unitNameMl(u catalog.Unit) string {
	if name, ok := unitNamesMl[u]; ok {
		return name
	}
	return string(u)
}

// FormatQuantity renders a quantity the way it would be spoken: the common
// fractions by their Malayalam names, whole numbers without decimals.
func FormatQuantity(q float64) string {
	switch q {
	case 0.25:
		return "കാൽ"
	case 0.5:
		return "അര"
	case 0.75:
		return "മുക്കാൽ"
	}
	if q == math.Trunc(q) {
		return strconv.FormatFloat(q, 'f', 0, 64)
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
