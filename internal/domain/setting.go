package domain

// CareSetting is the closed enumeration of care tiers a completed
// assessment can recommend. Settings are ordered by acuity: a higher
// rank means a more restrictive level of care.
type CareSetting string

const (
	SettingInHome         CareSetting = "in_home"
	SettingAssistedLiving CareSetting = "assisted_living"
	SettingMemoryCare     CareSetting = "memory_care"
	SettingSkilledNursing CareSetting = "skilled_nursing"
)

var settingRank = map[CareSetting]int{
	SettingInHome:         0,
	SettingAssistedLiving: 1,
	SettingMemoryCare:     2,
	SettingSkilledNursing: 3,
}

// Rank returns the acuity rank of the setting. Unknown settings rank
// below in_home so they never win a comparison.
func (s CareSetting) Rank() int {
	if r, ok := settingRank[s]; ok {
		return r
	}
	return -1
}

func ValidSetting(s string) bool {
	_, ok := settingRank[CareSetting(s)]
	return ok
}

// AllSettings returns every setting in ascending acuity order.
func AllSettings() []CareSetting {
	return []CareSetting{SettingInHome, SettingAssistedLiving, SettingMemoryCare, SettingSkilledNursing}
}

// LowestAcuity is the default recommendation for a zero-information
// assessment: the least restrictive setting.
func LowestAcuity() CareSetting {
	return SettingInHome
}

// HigherAcuity returns whichever of the two settings sits higher in the
// acuity order.
func HigherAcuity(a, b CareSetting) CareSetting {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

func (s CareSetting) Label() string {
	switch s {
	case SettingInHome:
		return "In-Home Care"
	case SettingAssistedLiving:
		return "Assisted Living"
	case SettingMemoryCare:
		return "Memory Care"
	case SettingSkilledNursing:
		return "Skilled Nursing"
	default:
		return string(s)
	}
}
