package checker

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/VectorBits/clearsign/src/internal/descriptor"
	"github.com/VectorBits/clearsign/src/internal/solidity"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

type rule struct {
	name string
	run  func(d *document, r *Report)
}

// Evaluated in order; the order fixes the order of messages in a report.
var rules = []rule{
	{"structure", checkStructure},
	{"schema", checkSchemaURL},
	{"context", checkContext},
	{"metadata", checkMetadata},
	{"display", checkDisplay},
	{"interpolated-intent", checkInterpolatedIntents},
	{"labels", checkLabels},
	{"abi-types", checkABITypes},
	{"checksum", checkChecksums},
}

// document wraps the decoded JSON with lenient accessors: a missing or
// mistyped member reads as empty.
type document struct {
	root map[string]interface{}
}

func object(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func list(v interface{}) []interface{} {
	l, _ := v.([]interface{})
	return l
}

func has(m map[string]interface{}, key string) bool {
	_, ok := m[key]
	return ok
}

func (d *document) context() map[string]interface{} {
	return object(d.root["context"])
}

func (d *document) metadata() map[string]interface{} {
	return object(d.root["metadata"])
}

func (d *document) display() map[string]interface{} {
	return object(d.root["display"])
}

func (d *document) formats() map[string]interface{} {
	return object(d.display()["formats"])
}

func (d *document) deployments() []interface{} {
	return list(object(d.context()["contract"])["deployments"])
}

// signatures returns the format keys in sorted order.
func (d *document) signatures() []string {
	formats := d.formats()
	sigs := make([]string, 0, len(formats))
	for sig := range formats {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	return sigs
}

func (d *document) fields(sig string) []interface{} {
	return list(object(d.formats()[sig])["fields"])
}

func checkStructure(d *document, r *Report) {
	for _, field := range []string{"$schema", "context", "display"} {
		if !has(d.root, field) {
			r.add(SeverityError, "Missing required field: "+field)
		}
	}
}

func checkSchemaURL(d *document, r *Report) {
	actual, _ := d.root["$schema"].(string)
	if actual != descriptor.SchemaURL {
		got := "None"
		if v, ok := d.root["$schema"]; ok {
			got = fmt.Sprint(v)
		}
		r.add(SeverityError, fmt.Sprintf("Incorrect schema URL.\n  Expected: %s\n  Got: %s", descriptor.SchemaURL, got))
	}
}

func checkContext(d *document, r *Report) {
	ctx := d.context()
	if !has(ctx, "$id") {
		r.add(SeverityError, "Missing context.$id")
	}
	if !has(ctx, "contract") && !has(ctx, "eip712") {
		r.add(SeverityError, "Context must have either 'contract' or 'eip712'")
	}
	if !has(ctx, "contract") {
		return
	}

	deployments := d.deployments()
	if len(deployments) == 0 {
		r.add(SeverityWarning, "No deployments specified in context.contract")
		return
	}
	for i, v := range deployments {
		dep := object(v)
		if !has(dep, "chainId") {
			r.add(SeverityError, fmt.Sprintf("Deployment %d missing chainId", i))
		}
		if !has(dep, "address") {
			r.add(SeverityError, fmt.Sprintf("Deployment %d missing address", i))
			continue
		}
		addr, _ := dep["address"].(string)
		if addr == zeroAddress {
			r.add(SeverityWarning, fmt.Sprintf("Deployment %d uses zero address (placeholder)", i))
		}
		if !strings.HasPrefix(addr, "0x") || len(addr) != 42 {
			r.add(SeverityError, fmt.Sprintf("Deployment %d has invalid address format: %v", i, dep["address"]))
		}
	}
}

func checkMetadata(d *document, r *Report) {
	meta := d.metadata()
	if len(meta) == 0 {
		r.add(SeverityWarning, "No metadata section (optional but recommended)")
		return
	}
	if !has(meta, "owner") {
		r.add(SeverityWarning, "metadata.owner not specified")
	}
	if !has(meta, "contractName") {
		r.add(SeverityWarning, "metadata.contractName not specified")
	}
	if url, _ := object(meta["info"])["url"].(string); url == "" {
		r.add(SeveritySuggestion, "Consider adding metadata.info.url")
	}
	if d.hasTokenAmount() && !has(meta, "token") {
		r.add(SeveritySuggestion, "Functions use tokenAmount format. Consider adding metadata.token with name, ticker, decimals")
	}
}

func (d *document) hasTokenAmount() bool {
	for _, sig := range d.signatures() {
		for _, f := range d.fields(sig) {
			if object(f)["format"] == "tokenAmount" {
				return true
			}
		}
	}
	return false
}

func checkDisplay(d *document, r *Report) {
	display := d.display()
	if !has(display, "formats") {
		r.add(SeverityError, "Missing display.formats")
		return
	}
	formats := d.formats()
	if len(formats) == 0 {
		r.add(SeverityWarning, "No formats defined in display.formats")
		return
	}
	r.add(SeveritySuggestion, fmt.Sprintf("Found %d function format(s)", len(formats)))

	for _, sig := range d.signatures() {
		format := object(formats[sig])
		if !has(format, "intent") {
			r.add(SeverityError, sig+": Missing 'intent'")
		}
		if !has(format, "fields") {
			r.add(SeverityWarning, sig+": Missing 'fields' array")
			continue
		}
		for i, f := range list(format["fields"]) {
			checkField(fmt.Sprintf("%s field[%d]", sig, i), object(f), r)
		}
	}
}

func checkField(id string, field map[string]interface{}, r *Report) {
	if !has(field, "path") {
		r.add(SeverityError, id+": Missing 'path'")
	}
	if !has(field, "format") && !has(field, "fields") {
		r.add(SeverityError, id+": Must have either 'format' or 'fields' (for containers)")
	}

	params := object(field["params"])
	switch field["format"] {
	case "tokenAmount":
		if !has(params, "tokenPath") {
			r.add(SeveritySuggestion, id+": tokenAmount without tokenPath parameter. Consider linking to token address parameter")
		}
	case "addressName":
		if !has(params, "types") {
			r.add(SeveritySuggestion, id+": addressName without 'types' parameter")
		}
	case "enum":
		if !has(params, "enumPath") {
			r.add(SeverityError, id+": enum format requires 'enumPath' parameter")
		}
	}
}

func checkInterpolatedIntents(d *document, r *Report) {
	formats := d.formats()
	for _, sig := range d.signatures() {
		format := object(formats[sig])
		if !has(format, "interpolatedIntent") && len(d.fields(sig)) > 0 {
			r.add(SeveritySuggestion, sig+": Consider adding 'interpolatedIntent' for better UX")
		}
	}
}

func checkLabels(d *document, r *Report) {
	for _, sig := range d.signatures() {
		for _, f := range d.fields(sig) {
			field := object(f)
			if !has(field, "label") && has(field, "format") {
				path, ok := field["path"]
				if !ok {
					path = "?"
				}
				r.add(SeverityWarning, fmt.Sprintf("%s: Field '%v' missing label", sig, path))
			}
		}
	}
}

// checkABITypes flags signature keys whose parameter types the ABI encoder
// would reject, such as contract or struct names.
func checkABITypes(d *document, r *Report) {
	for _, sig := range d.signatures() {
		open := strings.IndexByte(sig, '(')
		if open <= 0 || !strings.HasSuffix(sig, ")") {
			r.add(SeverityWarning, fmt.Sprintf("%s: key is not a function signature", sig))
			continue
		}
		for _, typ := range solidity.SplitParams(sig[open+1 : len(sig)-1]) {
			typ = strings.TrimSpace(typ)
			if typ == "" || strings.HasPrefix(typ, "(") {
				continue
			}
			if _, err := abi.NewType(descriptor.CanonicalType(typ), "", nil); err != nil {
				r.add(SeverityWarning, fmt.Sprintf("%s: parameter type %q is not a valid ABI type", sig, typ))
			}
		}
	}
}

func checkChecksums(d *document, r *Report) {
	for i, v := range d.deployments() {
		addr, _ := object(v)["address"].(string)
		if !common.IsHexAddress(addr) || addr == zeroAddress {
			continue
		}
		if want := common.HexToAddress(addr).Hex(); addr != want {
			r.add(SeveritySuggestion, fmt.Sprintf("Deployment %d address is not EIP-55 checksummed (expected %s)", i, want))
		}
	}
}

func chainIDOf(v interface{}) (string, bool) {
	switch id := v.(type) {
	case json.Number:
		return id.String(), true
	case float64:
		return fmt.Sprintf("%.0f", id), true
	case string:
		return id, true
	default:
		return "", false
	}
}
