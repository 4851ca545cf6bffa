package dashboard

import (
	"github.com/solarwallbox/solarwallbox/pkg/config"
	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
)

// Flags are the automatic charging switches.
type Flags struct {
	Automatic bool
	Garage    bool
	Parking   bool
	Force     bool
}

func (f Flags) role(role string) bool {
	switch role {
	case config.RoleGarage:
		return f.Garage
	case config.RoleParking:
		return f.Parking
	}
	return false
}

// Decision is what automatic charging wants for one wallbox.
type Decision struct {
	// Managed is false if automatic charging leaves the wallbox alone.
	Managed bool
	Allow   bool
	Reason  string
}

// Decide computes whether a wallbox with the given role should be allowed
// to charge. The wallbox's own power is added back to excessW since the
// house consumption already contains it.
func Decide(f Flags, role string, excessW, minChargeW float64, d *goecharger.Data) Decision {
	if d == nil {
		return Decision{}
	}
	if f.Force {
		return Decision{Managed: true, Allow: true, Reason: "force charging"}
	}
	if !f.Automatic || !f.role(role) {
		return Decision{}
	}
	if excessW+d.CurrentPowerW() >= minChargeW {
		return Decision{Managed: true, Allow: true, Reason: "sun charging: enough excess power"}
	}
	return Decision{Managed: true, Allow: false, Reason: "sun charging: not enough excess power"}
}
