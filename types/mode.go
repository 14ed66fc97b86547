package types

// Kind tags a catalog entry. Only Solid and Turbo carry levels.
type Kind uint8

const (
	KindSolid Kind = iota
	KindTurbo
	KindBatteryCheck
	KindStrobe
	KindBikingStrobe
	KindBeacon
	KindSOS
)

var kindNames = [...]string{
	KindSolid:        "solid",
	KindTurbo:        "turbo",
	KindBatteryCheck: "battcheck",
	KindStrobe:       "strobe",
	KindBikingStrobe: "biking",
	KindBeacon:       "beacon",
	KindSOS:          "sos",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a profile name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Levelled reports whether the kind renders its own level pair.
func (k Kind) Levelled() bool { return k == KindSolid || k == KindTurbo }

// Mode is one immutable catalog entry.
type Mode struct {
	Kind      Kind
	Primary   uint8
	Secondary uint8
}

func Solid(primary, secondary uint8) Mode {
	return Mode{Kind: KindSolid, Primary: primary, Secondary: secondary}
}

func Turbo(primary, secondary uint8) Mode {
	return Mode{Kind: KindTurbo, Primary: primary, Secondary: secondary}
}

// Symbol returns a non-levelled entry.
func Symbol(k Kind) Mode { return Mode{Kind: k} }
