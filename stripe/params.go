package stripe

import (
	"fmt"
	"math"
	"strconv"

	stripeapi "github.com/stripe/stripe-go/v82"
	"go.vocdoni.io/dvote/log"
	"gopkg.in/yaml.v3"
)

// amountToMinorUnits converts an amount expressed in the currency's major
// unit ("10.00") into minor units (1000). The conversion is a fixed *100,
// it does not account for zero-decimal currencies. Fractional inputs beyond
// two decimals round half away from zero: "19.999" becomes 2000.
func amountToMinorUnits(amount string) (int64, error) {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return int64(math.Round(value * 100)), nil
}

// parseQuantity returns the subscription quantity, defaulting to 1 when the
// resolved value is empty, unparseable or not positive.
func parseQuantity(quantity string) int64 {
	n, err := strconv.ParseInt(quantity, 10, 64)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// decodeYAMLMap parses a human-authored key-value block. Malformed input is
// fatal to the invocation and propagates to the caller.
func decodeYAMLMap(block string) (map[string]any, error) {
	decoded := map[string]any{}
	if err := yaml.Unmarshal([]byte(block), &decoded); err != nil {
		return nil, fmt.Errorf("malformed YAML block: %w", err)
	}
	return decoded, nil
}

// mergeMetadata extends the computed submission metadata with the operator's
// YAML metadata block. Reserved keys always win: an operator entry colliding
// with a computed key is dropped.
func mergeMetadata(computed map[string]string, block string) (map[string]string, error) {
	merged := make(map[string]string, len(computed))
	for k, v := range computed {
		merged[k] = v
	}
	if block == "" {
		return merged, nil
	}
	extra, err := decodeYAMLMap(block)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, reserved := computed[k]; reserved {
			log.Debugf("stripe handler: ignoring reserved metadata key %q", k)
			continue
		}
		merged[k] = fmt.Sprint(v)
	}
	return merged, nil
}

// applyOverrides attaches the operator's raw API fields to a Stripe request.
// Keys already computed by the handler are reserved and never overridden;
// everything else is form-encoded onto the request, flattening nested
// mappings and sequences the way the Stripe API expects (a[b], a[0]).
func applyOverrides(params *stripeapi.Params, block string, reserved map[string]bool) error {
	if block == "" {
		return nil
	}
	overrides, err := decodeYAMLMap(block)
	if err != nil {
		return err
	}
	for key, value := range overrides {
		if reserved[key] {
			log.Debugf("stripe handler: ignoring reserved override key %q", key)
			continue
		}
		addExtra(params, key, value)
	}
	return nil
}

func addExtra(params *stripeapi.Params, key string, value any) {
	switch val := value.(type) {
	case map[string]any:
		for k, v := range val {
			addExtra(params, fmt.Sprintf("%s[%s]", key, k), v)
		}
	case []any:
		for i, v := range val {
			addExtra(params, fmt.Sprintf("%s[%d]", key, i), v)
		}
	case nil:
		params.AddExtra(key, "")
	default:
		params.AddExtra(key, fmt.Sprint(val))
	}
}

// reservedKeys builds the reserved-key set for one API call from the keys
// the handler computed itself.
func reservedKeys(keys ...string) map[string]bool {
	reserved := make(map[string]bool, len(keys))
	for _, k := range keys {
		reserved[k] = true
	}
	return reserved
}
