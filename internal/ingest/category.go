package ingest

import (
	"strings"

	"restau/internal/csvimport"
	"restau/internal/domain"
)

// Category names one of the eight uploaded exports by its form field.
type Category string

const (
	CategoryChannelSales     Category = "caparprofit"
	CategoryConsumptionModes Category = "consommationparprofit"
	CategoryCorrections      Category = "corrections"
	CategoryMisc             Category = "divers"
	CategoryPayments         Category = "reglement"
	CategoryDiscounts        Category = "remises"
	CategoryTaxSummary       Category = "tva"
	CategoryAnnexSales       Category = "vente_annexes"
)

// Categories lists every upload in ingestion order.
var Categories = []Category{
	CategoryChannelSales,
	CategoryConsumptionModes,
	CategoryCorrections,
	CategoryMisc,
	CategoryPayments,
	CategoryDiscounts,
	CategoryTaxSummary,
	CategoryAnnexSales,
}

// categorySpec maps one export to its child record set. Single-row
// categories only see the first data row; multi-row categories see all.
type categorySpec struct {
	multi bool
	build func(b *domain.ReportBundle, row csvimport.Row)
}

var specs = map[Category]categorySpec{
	CategoryChannelSales:     {multi: true, build: buildChannelSales},
	CategoryConsumptionModes: {build: buildConsumptionModes},
	CategoryCorrections:      {build: buildCorrections},
	CategoryMisc:             {build: buildMisc},
	CategoryPayments:         {multi: true, build: buildPayment},
	CategoryDiscounts:        {build: buildDiscounts},
	CategoryTaxSummary:       {multi: true, build: buildTaxSummary},
	CategoryAnnexSales:       {multi: true, build: buildAnnexSale},
}

// apply feeds rows into the bundle according to the category's cardinality.
func (s categorySpec) apply(b *domain.ReportBundle, rows []csvimport.Row) {
	if !s.multi && len(rows) > 1 {
		rows = rows[:1]
	}
	for _, row := range rows {
		s.build(b, row)
	}
}

func label(row csvimport.Row, key string) string {
	return strings.TrimSpace(row.Get(key))
}

func buildChannelSales(b *domain.ReportBundle, row csvimport.Row) {
	b.ChannelSales = append(b.ChannelSales, domain.ChannelSalesRow{
		ReportID:       b.Report.ID,
		ChannelLabel:   label(row, "profit"),
		TAC:            csvimport.ParseInt(row.Get("tac")),
		CANet:          csvimport.ParseDecimal(row.Get("net")),
		CATTC:          csvimport.ParseDecimal(row.Get("ttc")),
		PMNet:          csvimport.ParseDecimal(row.Get("panierMoyenNet")),
		PMTTC:          csvimport.ParseDecimal(row.Get("panierMoyenTTC")),
		NetTotalProfit: csvimport.ParseDecimal(row.Get("netTotalProfit")),
	})
}

// buildConsumptionModes splits the single export row into the dine-in (SP)
// and takeaway (AE) records.
func buildConsumptionModes(b *domain.ReportBundle, row csvimport.Row) {
	for _, mode := range []string{"SP", "AE"} {
		b.ConsumptionModes = append(b.ConsumptionModes, domain.ConsumptionModeRow{
			ReportID: b.Report.ID,
			Mode:     mode,
			TAC:      csvimport.ParseInt(row.Get(mode + "_tac")),
			CAHT:     csvimport.ParseDecimal(row.Get(mode + "_caht")),
			CATTC:    csvimport.ParseDecimal(row.Get(mode + "_cattc")),
			Pct:      csvimport.ParseDecimal(row.Get(mode + "_pourcent")),
		})
	}
}

func buildCorrections(b *domain.ReportBundle, row csvimport.Row) {
	b.Corrections = &domain.CorrectionsRow{
		ReportID: b.Report.ID,
		Taux:     csvimport.ParseDecimal(row.Get("tauxCorrection")),
		Montant:  csvimport.ParseDecimal(row.Get("montantCorrection")),
		Nombre:   csvimport.ParseInt(row.Get("nombreCorrection")),
	}
}

func buildMisc(b *domain.ReportBundle, row csvimport.Row) {
	b.Misc = &domain.MiscRow{
		ReportID:                     b.Report.ID,
		NombreRepasEmployes:          csvimport.ParseInt(row.Get("nombreRepasEmployes")),
		NombreCommandesOuvertes:      csvimport.ParseInt(row.Get("nombreCommandeOuvertes")),
		MontantValoriseRepasEmployes: csvimport.ParseDecimal(row.Get("montantValoriseRepasEmployes")),
		NombreAnnulations:            csvimport.ParseInt(row.Get("nombreAnnulations")),
		MontantAnnulations:           csvimport.ParseDecimal(row.Get("montantAnnulations")),
		TauxCommandesOuvertes:        csvimport.ParseDecimal(row.Get("tauxCommandeOuvertes")),
		TauxRepasEmployes:            csvimport.ParseDecimal(row.Get("tauxRepasEmployes")),
		MontantCommandesOuvertes:     csvimport.ParseDecimal(row.Get("montantCommandeOuvertes")),
		TauxAnnulations:              csvimport.ParseDecimal(row.Get("tauxAnnulations")),
	}
}

func buildPayment(b *domain.ReportBundle, row csvimport.Row) {
	b.Payments = append(b.Payments, domain.PaymentRow{
		ReportID:    b.Report.ID,
		PaymentType: label(row, "type"),
		Theorique:   csvimport.ParseDecimal(row.Get("theorique")),
		Preleve:     csvimport.ParseDecimal(row.Get("preleve")),
		Compte:      csvimport.ParseDecimal(row.Get("compte")),
		Ecart:       csvimport.ParseDecimal(row.Get("ecart")),
	})
}

func buildDiscounts(b *domain.ReportBundle, row csvimport.Row) {
	b.Discounts = &domain.DiscountsRow{
		ReportID:              b.Report.ID,
		TauxRemises:           csvimport.ParseDecimal(row.Get("tauxRemises")),
		MontantRemises:        csvimport.ParseDecimal(row.Get("montantRemises")),
		NombreRemises:         csvimport.ParseInt(row.Get("nombreRemises")),
		TauxSaucesOffertes:    csvimport.ParseDecimal(row.Get("tauxSaucesOffertes")),
		MontantSaucesOffertes: csvimport.ParseDecimal(row.Get("montantSaucesOffertes")),
		NbrSaucesOffertes:     csvimport.ParseInt(row.Get("nbrSaucesOffertes")),
	}
}

func buildTaxSummary(b *domain.ReportBundle, row csvimport.Row) {
	b.TaxSummary = append(b.TaxSummary, domain.TaxSummaryRow{
		ReportID: b.Report.ID,
		TvaLabel: label(row, "libelle"),
		HT:       csvimport.ParseDecimal(row.Get("HT")),
		TVA:      csvimport.ParseDecimal(row.Get("TVA")),
		TTC:      csvimport.ParseDecimal(row.Get("TTC")),
	})
}

func buildAnnexSale(b *domain.ReportBundle, row csvimport.Row) {
	b.AnnexSales = append(b.AnnexSales, domain.AnnexSaleRow{
		ReportID:   b.Report.ID,
		Libelle:    label(row, "libelle"),
		Nbr:        csvimport.ParseInt(row.Get("nbr")),
		MontantHT:  csvimport.ParseDecimal(row.Get("montantHT")),
		MontantTTC: csvimport.ParseDecimal(row.Get("montantttc")),
	})
}
