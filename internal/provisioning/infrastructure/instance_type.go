package infrastructure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
)

// MinimumNodepoolSize is the smallest size SKS accepts for nodepool members.
const MinimumNodepoolSize = "small"

// disallowedSizes are rejected by SKS for nodepools.
var disallowedSizes = map[string]bool{
	"tiny":  true,
	"micro": true,
}

// TypeSelection is the outcome of instance type resolution.
type TypeSelection struct {
	Type          exoscale.InstanceType
	RequestedSize string
	EffectiveSize string
	// Upgraded is set when RequestedSize was below the nodepool minimum.
	Upgraded bool
	// Fallback is set when no type matched and the first listed one was used.
	Fallback bool
}

// EffectiveSize applies the nodepool minimum-size policy.
func EffectiveSize(size string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(size))
	if disallowedSizes[s] {
		return MinimumNodepoolSize, true
	}
	return s, false
}

// ResolveInstanceType picks the first type whose family contains family and
// whose size contains the effective size. Without a match it falls back to
// the first listed type whose size SKS accepts for nodepools.
func ResolveInstanceType(types []exoscale.InstanceType, family, size string) (TypeSelection, error) {
	if len(types) == 0 {
		return TypeSelection{}, errors.New("no instance types available in zone")
	}

	effective, upgraded := EffectiveSize(size)
	sel := TypeSelection{
		RequestedSize: strings.ToLower(strings.TrimSpace(size)),
		EffectiveSize: effective,
		Upgraded:      upgraded,
	}

	wantFamily := strings.ToLower(strings.TrimSpace(family))
	for _, t := range types {
		if strings.Contains(strings.ToLower(t.Family), wantFamily) &&
			strings.Contains(strings.ToLower(t.Size), effective) {
			sel.Type = t
			return sel, nil
		}
	}

	for _, t := range types {
		if disallowedSizes[strings.ToLower(strings.TrimSpace(t.Size))] {
			continue
		}
		sel.Type = t
		sel.Fallback = true
		return sel, nil
	}
	return TypeSelection{}, fmt.Errorf("no instance type of size %s or larger available in zone", MinimumNodepoolSize)
}
