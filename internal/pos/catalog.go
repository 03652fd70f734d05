package pos

// CatalogPrice is one purchasable price point for a catalog entry.
// Recurring prices bill monthly; Commitment records contract terms
// (e.g. "3mo") as Stripe price metadata.
type CatalogPrice struct {
	Amount     int64
	Nickname   string
	Recurring  bool
	Commitment string
}

// CatalogEntry is one product in the clinic's service catalog. Entries
// with no prices are consultation-only and get no POS service row.
type CatalogEntry struct {
	Name        string
	Description string
	Category    string
	Prices      []CatalogPrice
}

// categoryOrder drives the sort_order assigned to pos_services rows so
// the POS screen groups services the way the front desk expects.
var categoryOrder = []string{
	"programs", "combo_membership", "hbot", "red_light", "hrt", "weight_loss",
	"iv_therapy", "specialty_iv", "injection_standard", "injection_premium",
	"injection_pack", "nad_injection", "peptide", "labs", "regenerative", "assessment",
}

func categoryIndex(category string) int {
	for i, c := range categoryOrder {
		if c == category {
			return i
		}
	}
	return len(categoryOrder)
}

// Catalog is the full Range Medical service list seeded into Stripe and
// the pos_services table.
var Catalog = []CatalogEntry{
	// Programs
	{
		Name:        "Six-Week Cellular Energy Reset",
		Description: "Six-week program: weekly IVs, HBOT, red light, and dosing protocol.",
		Category:    "programs",
		Prices:      []CatalogPrice{{Amount: 399900}},
	},

	// Combo memberships
	{
		Name:        "HBOT + Red Light Membership",
		Description: "Monthly combo membership: hyperbaric oxygen plus red light sessions.",
		Category:    "combo_membership",
		Prices: []CatalogPrice{
			{Amount: 59900, Nickname: "8 sessions/mo", Recurring: true, Commitment: "3mo"},
			{Amount: 79900, Nickname: "12 sessions/mo", Recurring: true, Commitment: "3mo"},
		},
	},

	// HBOT
	{
		Name:        "Hyperbaric Oxygen Session",
		Description: "Single mild hyperbaric oxygen therapy session.",
		Category:    "hbot",
		Prices:      []CatalogPrice{{Amount: 12500}},
	},
	{
		Name:        "HBOT 10-Pack",
		Description: "Ten hyperbaric oxygen sessions.",
		Category:    "hbot",
		Prices:      []CatalogPrice{{Amount: 99900}},
	},

	// Red light
	{
		Name:        "Red Light Session",
		Description: "Single full-body red light therapy session.",
		Category:    "red_light",
		Prices:      []CatalogPrice{{Amount: 5000}},
	},
	{
		Name:        "Red Light Monthly Unlimited",
		Description: "Unlimited red light sessions, billed monthly.",
		Category:    "red_light",
		Prices:      []CatalogPrice{{Amount: 19900, Recurring: true}},
	},

	// HRT
	{
		Name:        "HRT Monthly Membership",
		Description: "Hormone replacement therapy: medication, supplies, and quarterly labs.",
		Category:    "hrt",
		Prices:      []CatalogPrice{{Amount: 19900, Recurring: true}},
	},

	// Weight loss
	{
		Name:        "Weight Loss Program — Semaglutide",
		Description: "Monthly semaglutide program with provider oversight.",
		Category:    "weight_loss",
		Prices:      []CatalogPrice{{Amount: 29900, Recurring: true}},
	},
	{
		Name:        "Weight Loss Program — Tirzepatide",
		Description: "Monthly tirzepatide program with provider oversight.",
		Category:    "weight_loss",
		Prices:      []CatalogPrice{{Amount: 44900, Recurring: true}},
	},

	// IV therapy
	{
		Name:        "The Range IV",
		Description: "Signature hydration and micronutrient IV.",
		Category:    "iv_therapy",
		Prices:      []CatalogPrice{{Amount: 19500}},
	},
	{
		Name:        "Vitamin Add-On",
		Description: "Additional vitamin/mineral add-on for The Range IV.",
		Category:    "iv_therapy",
		Prices:      []CatalogPrice{{Amount: 3500}},
	},
	{
		Name:        "Glutathione Push — 400mg",
		Description: "Glutathione push add-on. 400mg.",
		Category:    "iv_therapy",
		Prices:      []CatalogPrice{{Amount: 7500}},
	},
	{
		Name:        "Glutathione Push — 600mg",
		Description: "Glutathione push add-on. 600mg.",
		Category:    "iv_therapy",
		Prices:      []CatalogPrice{{Amount: 10000}},
	},

	// Specialty IVs
	{
		Name:        "Glutathione IV",
		Description: "Glutathione IV infusion.",
		Category:    "specialty_iv",
		Prices: []CatalogPrice{
			{Amount: 17000, Nickname: "1g"},
			{Amount: 19000, Nickname: "2g"},
			{Amount: 21500, Nickname: "3g"},
		},
	},
	{
		Name:        "High-Dose Vitamin C IV",
		Description: "High-dose Vitamin C IV infusion.",
		Category:    "specialty_iv",
		Prices: []CatalogPrice{
			{Amount: 21500, Nickname: "10g"},
			{Amount: 24000, Nickname: "20g"},
			{Amount: 27000, Nickname: "30g"},
			{Amount: 30000, Nickname: "40g"},
			{Amount: 33000, Nickname: "50g"},
			{Amount: 36000, Nickname: "60g"},
			{Amount: 39000, Nickname: "70g"},
			{Amount: 40000, Nickname: "75g"},
		},
	},
	{
		Name:        "Methylene Blue IV",
		Description: "Methylene Blue IV infusion.",
		Category:    "specialty_iv",
		Prices:      []CatalogPrice{{Amount: 45000}},
	},
	{
		Name:        "NAD+ IV — 225mg",
		Description: "NAD+ IV infusion. 225mg.",
		Category:    "specialty_iv",
		Prices:      []CatalogPrice{{Amount: 37500}},
	},
	{
		Name:        "NAD+ IV — 500mg",
		Description: "NAD+ IV infusion. 500mg.",
		Category:    "specialty_iv",
		Prices:      []CatalogPrice{{Amount: 52500}},
	},
	{
		Name:        "NAD+ IV — 750mg",
		Description: "NAD+ IV infusion. 750mg.",
		Category:    "specialty_iv",
		Prices:      []CatalogPrice{{Amount: 65000}},
	},

	// Injections
	{
		Name:        "B12 Injection",
		Description: "Vitamin B12 intramuscular injection.",
		Category:    "injection_standard",
		Prices:      []CatalogPrice{{Amount: 3500}},
	},
	{
		Name:        "Lipo-B Injection",
		Description: "Lipotropic B injection.",
		Category:    "injection_standard",
		Prices:      []CatalogPrice{{Amount: 4500}},
	},
	{
		Name:        "NAD+ Injection — 100mg",
		Description: "NAD+ subcutaneous injection. 100mg.",
		Category:    "nad_injection",
		Prices:      []CatalogPrice{{Amount: 9500}},
	},

	// Peptides
	{
		Name:        "BPC-157 Protocol",
		Description: "BPC-157 peptide protocol with supplies and dosing schedule.",
		Category:    "peptide",
		Prices: []CatalogPrice{
			{Amount: 34900, Nickname: "4 weeks"},
			{Amount: 59900, Nickname: "8 weeks"},
		},
	},

	// Labs
	{
		Name:        "Comprehensive Lab Panel",
		Description: "Full biomarker panel with provider review.",
		Category:    "labs",
		Prices:      []CatalogPrice{{Amount: 39900}},
	},

	// Regenerative (consultation only)
	{
		Name:        "Exosome IV Therapy",
		Description: "Exosome IV infusion therapy. Consultation required for pricing.",
		Category:    "regenerative",
		Prices:      []CatalogPrice{},
	},

	// Assessment (free)
	{
		Name:        "Range Assessment",
		Description: "Initial assessment for new patients. Two-door model: injury/recovery or health optimization.",
		Category:    "assessment",
		Prices:      []CatalogPrice{{Amount: 0}},
	},
}
