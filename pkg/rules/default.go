package rules

// v is shorthand for the default table literal.
func v(firstSuffix, secondPrefix string) Variant {
	return Variant{FirstSuffix: firstSuffix, SecondPrefix: secondPrefix}
}

// Default returns the built-in vowel and semivowel sandhi table.
func Default() *Table {
	return MustNew(
		// ā: a/ā + a/ā
		Rule{Marker: "ा", Variants: []Variant{v("", "अ"), v("", "आ"), v("ा", "अ"), v("ा", "आ")}},
		Rule{Marker: "ी", Variants: []Variant{v("ि", "इ"), v("ि", "ई"), v("ी", "इ"), v("ी", "ई"), v("िः", "")}},
		Rule{Marker: "ू", Variants: []Variant{v("ु", "उ"), v("ु", "ऊ"), v("ू", "उ"), v("ू", "ऊ"), v("ुः", "")}},
		Rule{Marker: "ृ", Variants: []Variant{v("ृ", "ऋ")}},
		// guṇa
		Rule{Marker: "े", Variants: []Variant{v("", "इ"), v("", "ई"), v("ा", "इ"), v("ा", "ई")}},
		Rule{Marker: "ो", Variants: []Variant{v("", "उ"), v("", "ऊ"), v("ा", "उ"), v("ा", "ऊ"), v("ः", "")}},
		Rule{Marker: "र्", Variants: []Variant{v("", "ऋ"), v("ा", "ऋ")}},
		// vṛddhi
		Rule{Marker: "ै", Variants: []Variant{v("", "ए"), v("", "ऐ"), v("ा", "ए"), v("ा", "ऐ")}},
		Rule{Marker: "ौ", Variants: []Variant{v("", "ओ"), v("", "औ"), v("ा", "ओ"), v("ा", "औ")}},
		// yaṇ
		Rule{Marker: "य", Variants: []Variant{v("ि", "अ"), v("ी", "अ"), v("े", "अ"), v("े", "इ"), v("े", "उ")}},
	)
}
