package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyReport is the parent record of one (restaurant, date) upload.
type DailyReport struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ClientCode     string    `db:"client_code" json:"client_code"`
	RestaurantCode string    `db:"restaurant_code" json:"restaurant_code"`
	ReportDate     Date      `db:"report_date" json:"report_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ChannelSalesRow is a sales channel line. IsTotal marks computed rollup rows.
type ChannelSalesRow struct {
	ID             int64               `db:"id" json:"id"`
	ReportID       uuid.UUID           `db:"report_id" json:"-"`
	ChannelLabel   string              `db:"channel_label" json:"channel_label"`
	IsTotal        bool                `db:"is_total" json:"is_total"`
	TAC            *int                `db:"tac" json:"tac"`
	CANet          decimal.NullDecimal `db:"ca_net" json:"ca_net"`
	CATTC          decimal.NullDecimal `db:"ca_ttc" json:"ca_ttc"`
	PMNet          decimal.NullDecimal `db:"pm_net" json:"pm_net"`
	PMTTC          decimal.NullDecimal `db:"pm_ttc" json:"pm_ttc"`
	NetTotalProfit decimal.NullDecimal `db:"net_total_profit" json:"net_total_profit"`
}

// ConsumptionModeRow carries dine-in ("SP") or takeaway ("AE") figures.
type ConsumptionModeRow struct {
	ID       int64               `db:"id" json:"id"`
	ReportID uuid.UUID           `db:"report_id" json:"-"`
	Mode     string              `db:"mode" json:"mode"`
	TAC      *int                `db:"tac" json:"tac"`
	CAHT     decimal.NullDecimal `db:"ca_ht" json:"ca_ht"`
	CATTC    decimal.NullDecimal `db:"ca_ttc" json:"ca_ttc"`
	Pct      decimal.NullDecimal `db:"pct" json:"pct"`
}

// CorrectionsRow holds till corrections for the day.
type CorrectionsRow struct {
	ID       int64               `db:"id" json:"id"`
	ReportID uuid.UUID           `db:"report_id" json:"-"`
	Taux     decimal.NullDecimal `db:"taux" json:"taux"`
	Montant  decimal.NullDecimal `db:"montant" json:"montant"`
	Nombre   *int                `db:"nombre" json:"nombre"`
}

// MiscRow holds staff meals, open orders and cancellations.
type MiscRow struct {
	ID                           int64               `db:"id" json:"id"`
	ReportID                     uuid.UUID           `db:"report_id" json:"-"`
	NombreRepasEmployes          *int                `db:"nombre_repas_employes" json:"nombre_repas_employes"`
	NombreCommandesOuvertes      *int                `db:"nombre_commandes_ouvertes" json:"nombre_commandes_ouvertes"`
	MontantValoriseRepasEmployes decimal.NullDecimal `db:"montant_valorise_repas_employes" json:"montant_valorise_repas_employes"`
	NombreAnnulations            *int                `db:"nombre_annulations" json:"nombre_annulations"`
	MontantAnnulations           decimal.NullDecimal `db:"montant_annulations" json:"montant_annulations"`
	TauxCommandesOuvertes        decimal.NullDecimal `db:"taux_commandes_ouvertes" json:"taux_commandes_ouvertes"`
	TauxRepasEmployes            decimal.NullDecimal `db:"taux_repas_employes" json:"taux_repas_employes"`
	MontantCommandesOuvertes     decimal.NullDecimal `db:"montant_commandes_ouvertes" json:"montant_commandes_ouvertes"`
	TauxAnnulations              decimal.NullDecimal `db:"taux_annulations" json:"taux_annulations"`
}

// PaymentRow is one payment method reconciliation line.
type PaymentRow struct {
	ID          int64               `db:"id" json:"id"`
	ReportID    uuid.UUID           `db:"report_id" json:"-"`
	PaymentType string              `db:"payment_type" json:"payment_type"`
	Theorique   decimal.NullDecimal `db:"theorique" json:"theorique"`
	Preleve     decimal.NullDecimal `db:"preleve" json:"preleve"`
	Compte      decimal.NullDecimal `db:"compte" json:"compte"`
	Ecart       decimal.NullDecimal `db:"ecart" json:"ecart"`
}

// DiscountsRow holds discounts and free sauces.
type DiscountsRow struct {
	ID                    int64               `db:"id" json:"id"`
	ReportID              uuid.UUID           `db:"report_id" json:"-"`
	TauxRemises           decimal.NullDecimal `db:"taux_remises" json:"taux_remises"`
	MontantRemises        decimal.NullDecimal `db:"montant_remises" json:"montant_remises"`
	NombreRemises         *int                `db:"nombre_remises" json:"nombre_remises"`
	TauxSaucesOffertes    decimal.NullDecimal `db:"taux_sauces_offertes" json:"taux_sauces_offertes"`
	MontantSaucesOffertes decimal.NullDecimal `db:"montant_sauces_offertes" json:"montant_sauces_offertes"`
	NbrSaucesOffertes     *int                `db:"nbr_sauces_offertes" json:"nbr_sauces_offertes"`
}

// TaxSummaryRow is one VAT bracket.
type TaxSummaryRow struct {
	ID       int64               `db:"id" json:"id"`
	ReportID uuid.UUID           `db:"report_id" json:"-"`
	TvaLabel string              `db:"tva_label" json:"tva_label"`
	HT       decimal.NullDecimal `db:"ht" json:"ht"`
	TVA      decimal.NullDecimal `db:"tva" json:"tva"`
	TTC      decimal.NullDecimal `db:"ttc" json:"ttc"`
}

// AnnexSaleRow is one ancillary sale line.
type AnnexSaleRow struct {
	ID         int64               `db:"id" json:"id"`
	ReportID   uuid.UUID           `db:"report_id" json:"-"`
	Libelle    string              `db:"libelle" json:"libelle"`
	Nbr        *int                `db:"nbr" json:"nbr"`
	MontantHT  decimal.NullDecimal `db:"montant_ht" json:"montant_ht"`
	MontantTTC decimal.NullDecimal `db:"montant_ttc" json:"montant_ttc"`
}

// KpiSummary mixes fields computed at ingest (CAReal, Clients, delivery and
// click-and-collect figures) with manually entered comparatives.
type KpiSummary struct {
	ID                 int64               `db:"id" json:"-"`
	ReportID           uuid.UUID           `db:"report_id" json:"-"`
	N1HT               decimal.NullDecimal `db:"n1_ht" json:"n1_ht"`
	VarN1              decimal.NullDecimal `db:"var_n1" json:"var_n1"`
	PrevHT             decimal.NullDecimal `db:"prev_ht" json:"prev_ht"`
	CAReal             decimal.NullDecimal `db:"ca_real" json:"ca_real"`
	Clients            *int                `db:"clients" json:"clients"`
	ClientsN1          *int                `db:"clients_n1" json:"clients_n1"`
	CADelivery         decimal.NullDecimal `db:"ca_delivery" json:"ca_delivery"`
	CADeliveryN1       decimal.NullDecimal `db:"ca_delivery_n1" json:"ca_delivery_n1"`
	ClientDelivery     *int                `db:"client_delivery" json:"client_delivery"`
	ClientDeliveryN1   *int                `db:"client_delivery_n1" json:"client_delivery_n1"`
	CAClickCollect     decimal.NullDecimal `db:"ca_click_collect" json:"ca_click_collect"`
	CncN1              decimal.NullDecimal `db:"cnc_n1" json:"cnc_n1"`
	ClientClickCollect *int                `db:"client_click_collect" json:"client_click_collect"`
	ClientN1           *int                `db:"client_n1" json:"client_n1"`
	CashDiff           decimal.NullDecimal `db:"cash_diff" json:"cash_diff"`
}

// KpiUpdate is a partial write to a KpiSummary. Nil fields are left untouched.
type KpiUpdate struct {
	N1HT               *decimal.Decimal `json:"n1_ht"`
	VarN1              *decimal.Decimal `json:"var_n1"`
	PrevHT             *decimal.Decimal `json:"prev_ht"`
	ClientsN1          *int             `json:"clients_n1"`
	CADeliveryN1       *decimal.Decimal `json:"ca_delivery_n1"`
	ClientDeliveryN1   *int             `json:"client_delivery_n1"`
	CncN1              *decimal.Decimal `json:"cnc_n1"`
	ClientN1           *int             `json:"client_n1"`
	CashDiff           *decimal.Decimal `json:"cash_diff"`
	CAReal             *decimal.Decimal `json:"ca_real"`
	Clients            *int             `json:"clients"`
	CADelivery         *decimal.Decimal `json:"ca_delivery"`
	ClientDelivery     *int             `json:"client_delivery"`
	CAClickCollect     *decimal.Decimal `json:"ca_click_collect"`
	ClientClickCollect *int             `json:"client_click_collect"`
}

// Empty reports whether the update carries no field at all.
func (u KpiUpdate) Empty() bool {
	return u == KpiUpdate{}
}

// ReportBundle is a report with all of its children, as ingested or fetched.
type ReportBundle struct {
	Report           DailyReport          `json:"report"`
	ChannelSales     []ChannelSalesRow    `json:"channel_sales"`
	ConsumptionModes []ConsumptionModeRow `json:"consumption_modes"`
	Corrections      *CorrectionsRow      `json:"corrections"`
	Misc             *MiscRow             `json:"divers"`
	Payments         []PaymentRow         `json:"payments"`
	Discounts        *DiscountsRow        `json:"remises"`
	TaxSummary       []TaxSummaryRow      `json:"tva_summary"`
	AnnexSales       []AnnexSaleRow       `json:"annex_sales"`
	Kpi              *KpiSummary          `json:"kpi"`
}

// ReportFilter narrows report listings. Scope is always applied.
type ReportFilter struct {
	StartDate      *Date
	EndDate        *Date
	RestaurantCode string
	Scope          Scope
}

// Scope is the set of restaurants a principal may see.
type Scope struct {
	All   bool
	Codes []string
}

// Empty reports whether the scope matches no restaurant at all.
func (s Scope) Empty() bool {
	return !s.All && len(s.Codes) == 0
}

// Allows reports whether code is visible under the scope.
func (s Scope) Allows(code string) bool {
	if s.All {
		return true
	}
	for _, c := range s.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// DerivedTotals are the top-line figures recomputed from raw channel rows.
type DerivedTotals struct {
	NetTotal            decimal.Decimal `json:"net_total"`
	TTCTotal            decimal.Decimal `json:"ttc_total"`
	TACTotal            int             `json:"tac_total"`
	DeliveryNet         decimal.Decimal `json:"delivery_net"`
	DeliveryClients     int             `json:"delivery_clients"`
	ClickCollectNet     decimal.Decimal `json:"click_collect_net"`
	ClickCollectClients int             `json:"click_collect_clients"`
}

// MonthlyReportData is a report loaded for the monthly view.
type MonthlyReportData struct {
	Report       DailyReport
	ChannelSales []ChannelSalesRow
	Kpi          *KpiSummary
}

// PriorKey identifies the comparable prior-period report of a restaurant.
type PriorKey struct {
	RestaurantCode string
	ReportDate     Date
}

// MonthlySnapshot holds the current-month reports and their prior-year matches.
type MonthlySnapshot struct {
	Current []MonthlyReportData
	Prior   map[PriorKey]MonthlyReportData
}

// MonthlyQuery selects a calendar month.
type MonthlyQuery struct {
	Year           int
	Month          int
	RestaurantCode string
}

// MonthlyItem is one line of the monthly KPI comparison.
type MonthlyItem struct {
	ID             uuid.UUID       `json:"id"`
	RestaurantCode string          `json:"restaurant_code"`
	ReportDate     Date            `json:"report_date"`
	CreatedAt      time.Time       `json:"created_at"`
	CANetTotal     decimal.Decimal `json:"ca_net_total"`
	CATTCTotal     decimal.Decimal `json:"ca_ttc_total"`
	TACTotal       int             `json:"tac_total"`
	Kpi            *KpiSummary     `json:"kpi"`
}
