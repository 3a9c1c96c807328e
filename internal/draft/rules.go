package draft

import "regexp"

// Rules is the locale-specific quality ruleset injected into the
// normalization engine. The algorithm itself is locale-agnostic; only the
// connective, filler, and weak-phrasing lists carry locale knowledge.
type Rules struct {
	// Connectives are clause separators beyond punctuation ("but/however/
	// because/that is/and" in the target locale).
	Connectives []string
	// FillerPatterns match generic filler phrasing stripped from clauses.
	// A clause that is pure filler is dropped entirely.
	FillerPatterns []*regexp.Regexp
	// WeakPatterns match hedged or vague constructions that disqualify a
	// bullet outright.
	WeakPatterns []*regexp.Regexp
	// PlaceholderBullet is appended when the body has to be synthesized
	// from the summary alone.
	PlaceholderBullet string
	// FallbackTitle is used when neither the generated nor the original
	// title carries text.
	FallbackTitle string
}

// UzbekRules returns the ruleset tuned for the Uzbek-latin editorial channel.
func UzbekRules() Rules {
	return Rules{
		Connectives: []string{
			", lekin ", ", ammo ", ", chunki ", ", bu esa ", ", ya'ni ", ", va ",
		},
		FillerPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\boddiy odamlar uchun\b`),
			regexp.MustCompile(`(?i)\boddiy foydalanuvchilar uchun\b`),
			regexp.MustCompile(`(?i)\bshuni inobatga olish\b`),
			regexp.MustCompile(`(?i)\bbu yangilik\b`),
			regexp.MustCompile(`(?i)\bushbu yangilik\b`),
			regexp.MustCompile(`(?i)\byaqinda\b`),
			regexp.MustCompile(`(?i)\byana\b`),
			regexp.MustCompile(`(?i)\basosiy xulosa\b`),
			regexp.MustCompile(`(?i)\bbu xizmat yordamida\b`),
			regexp.MustCompile(`(?i)\bbu vosita yordamida\b`),
		},
		WeakPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bfoydali bo'lishi mumkin\b`),
			regexp.MustCompile(`(?i)\banglatadi\b`),
			regexp.MustCompile(`(?i)\bkelajakda\b`),
			regexp.MustCompile(`(?i)\bishlatish oson\b`),
			regexp.MustCompile(`(?i)\bqulay interfeys\b`),
			regexp.MustCompile(`(?i)\bkatta qiziqish uyg'ot`),
			regexp.MustCompile(`(?i)\btaqdim etadi\b`),
			regexp.MustCompile(`(?i)\btaqdim etishi mumkin\b`),
			regexp.MustCompile(`(?i)\btezlashtirishi mumkin\b`),
			regexp.MustCompile(`(?i)\boddiy odam uchun\b`),
			regexp.MustCompile(`(?i)\boddiy foydalanuvchi uchun\b`),
			regexp.MustCompile(`(?i)\bo'zaro aloqalar uchun\b`),
			regexp.MustCompile(`(?i)\bxohlagancha sozlashingiz mumkin\b`),
			regexp.MustCompile(`(?i)\bimkoniyatlari mavjud\b`),
		},
		PlaceholderBullet: "Tafsilotlar keyinroq boyitiladi.",
		FallbackTitle:     "Yangilik",
	}
}
