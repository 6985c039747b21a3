package models

// Tier is a rung of the program ladder.
type Tier string

const (
	TierInicial       Tier = "INICIAL"
	TierAvanzado      Tier = "AVANZADO"
	TierProgramaLider Tier = "PROGRAMA_LIDER"
)

// Valid returns true when the tier is a supported value.
func (t Tier) Valid() bool {
	switch t {
	case TierInicial, TierAvanzado, TierProgramaLider:
		return true
	default:
		return false
	}
}

// DefaultCapacity is the seat count used when a cycle is created without one.
func (t Tier) DefaultCapacity() int {
	if t == TierInicial {
		return 30
	}
	return 20
}

// PackageOption is what an applicant buys. Combos span more than one tier.
type PackageOption string

const (
	PackageInicial              PackageOption = "INICIAL"
	PackageAvanzado             PackageOption = "AVANZADO"
	PackageProgramaLider        PackageOption = "PROGRAMA_LIDER"
	PackageComboInicialAvanzado PackageOption = "COMBO_INICIAL_AVANZADO"
	PackageFullExperience       PackageOption = "FULL_EXPERIENCE"
)

// Valid returns true when the package is a supported value.
func (p PackageOption) Valid() bool {
	return len(p.Tiers()) > 0
}

// Tiers lists the tiers covered by the package in ladder order.
func (p PackageOption) Tiers() []Tier {
	switch p {
	case PackageInicial:
		return []Tier{TierInicial}
	case PackageAvanzado:
		return []Tier{TierAvanzado}
	case PackageProgramaLider:
		return []Tier{TierProgramaLider}
	case PackageComboInicialAvanzado:
		return []Tier{TierInicial, TierAvanzado}
	case PackageFullExperience:
		return []Tier{TierInicial, TierAvanzado, TierProgramaLider}
	default:
		return nil
	}
}

// EntryTier is the tier a paid package starts at.
func (p PackageOption) EntryTier() Tier {
	tiers := p.Tiers()
	if len(tiers) == 0 {
		return ""
	}
	return tiers[0]
}

// Covers reports whether the purchase already includes the tier.
func (p PackageOption) Covers(t Tier) bool {
	for _, tier := range p.Tiers() {
		if tier == t {
			return true
		}
	}
	return false
}
