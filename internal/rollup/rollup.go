// Package rollup aggregates channel sales rows into per-group subtotals, a
// grand total and the top-line figures stored in the KPI summary.
package rollup

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restau/internal/domain"
)

const (
	GroupClickCollect = "CLICK & COLLECT"
	GroupComptoir     = "COMPTOIR"
	GroupDrive        = "DRIVE"
	GroupHomeDelivery = "HOME DELIVERY"
	GroupKiosk        = "KIOSK"

	// TotalLabel labels the grand total rollup row.
	TotalLabel = "TOTAL"
)

// Groups is the fixed emission order of group rollups.
var Groups = []string{GroupClickCollect, GroupComptoir, GroupDrive, GroupHomeDelivery, GroupKiosk}

// basketScale is the fractional precision of stored averages.
const basketScale = 6

// GroupOf returns the group whose prefix label starts with, ignoring case.
func GroupOf(label string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(label))
	for _, g := range Groups {
		if strings.HasPrefix(upper, g) {
			return g, true
		}
	}
	return "", false
}

type accumulator struct {
	tac    int
	net    decimal.Decimal
	ttc    decimal.Decimal
	profit decimal.Decimal
}

func (a *accumulator) add(r *domain.ChannelSalesRow) {
	if r.TAC != nil {
		a.tac += *r.TAC
	}
	if r.CANet.Valid {
		a.net = a.net.Add(r.CANet.Decimal)
	}
	if r.CATTC.Valid {
		a.ttc = a.ttc.Add(r.CATTC.Decimal)
	}
	if r.NetTotalProfit.Valid {
		a.profit = a.profit.Add(r.NetTotalProfit.Decimal)
	}
}

func (a *accumulator) row(label string, reportID uuid.UUID) domain.ChannelSalesRow {
	tac := a.tac
	out := domain.ChannelSalesRow{
		ReportID:       reportID,
		ChannelLabel:   label,
		IsTotal:        true,
		TAC:            &tac,
		CANet:          valid(a.net),
		CATTC:          valid(a.ttc),
		NetTotalProfit: valid(a.profit),
	}
	if a.tac != 0 {
		count := decimal.NewFromInt(int64(a.tac))
		out.PMNet = valid(a.net.DivRound(count, basketScale))
		out.PMTTC = valid(a.ttc.DivRound(count, basketScale))
	}
	return out
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Compute returns one rollup row per non-empty group, in Groups order,
// followed by the grand total. Rows already flagged as rollups are ignored.
func Compute(rows []domain.ChannelSalesRow) []domain.ChannelSalesRow {
	groups := make(map[string]*accumulator, len(Groups))
	var total accumulator
	var reportID uuid.UUID

	for i := range rows {
		r := &rows[i]
		if r.IsTotal {
			continue
		}
		reportID = r.ReportID
		total.add(r)
		g, ok := GroupOf(r.ChannelLabel)
		if !ok {
			continue
		}
		acc, exists := groups[g]
		if !exists {
			acc = &accumulator{}
			groups[g] = acc
		}
		acc.add(r)
	}

	out := make([]domain.ChannelSalesRow, 0, len(groups)+1)
	for _, g := range Groups {
		if acc, ok := groups[g]; ok {
			out = append(out, acc.row(g, reportID))
		}
	}
	return append(out, total.row(TotalLabel, reportID))
}

// Derive recomputes the top-line totals from raw rows only.
func Derive(rows []domain.ChannelSalesRow) domain.DerivedTotals {
	var total, delivery, clickCollect accumulator
	for i := range rows {
		r := &rows[i]
		if r.IsTotal {
			continue
		}
		total.add(r)
		switch g, _ := GroupOf(r.ChannelLabel); g {
		case GroupHomeDelivery:
			delivery.add(r)
		case GroupClickCollect:
			clickCollect.add(r)
		}
	}
	return domain.DerivedTotals{
		NetTotal:            total.net,
		TTCTotal:            total.ttc,
		TACTotal:            total.tac,
		DeliveryNet:         delivery.net,
		DeliveryClients:     delivery.tac,
		ClickCollectNet:     clickCollect.net,
		ClickCollectClients: clickCollect.tac,
	}
}

// KpiFromTotals fills the computed-on-ingest fields of a new KPI summary.
// Comparative fields stay null.
func KpiFromTotals(t domain.DerivedTotals) *domain.KpiSummary {
	clients := t.TACTotal
	deliveryClients := t.DeliveryClients
	ccClients := t.ClickCollectClients
	return &domain.KpiSummary{
		CAReal:             valid(t.NetTotal),
		Clients:            &clients,
		CADelivery:         valid(t.DeliveryNet),
		ClientDelivery:     &deliveryClients,
		CAClickCollect:     valid(t.ClickCollectNet),
		ClientClickCollect: &ccClients,
	}
}
