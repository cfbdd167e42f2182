package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"funkoshop/internal/domain"
)

// ProductInput is a creation payload after normalisation.
type ProductInput struct {
	Name             string
	Description      string
	Price            decimal.Decimal
	Stock            int
	Discount         *int
	SKU              string
	Dues             *int
	CreatedBy        int
	ImageFront       string
	ImageBack        string
	AdditionalImages *string
	Licence          domain.Reference
	Category         domain.Reference
	LicenceDefaults  domain.TaxonomyDefaults
	CategoryDefaults domain.TaxonomyDefaults
}

// Field is a value that may or may not have been sent in a partial update.
type Field[T any] struct {
	Set   bool
	Value T
}

func set[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

// ProductPatch is a partial update after normalisation. LicenceName and
// CategoryName are empty when the patch does not touch them.
type ProductPatch struct {
	Name             Field[string]
	Description      Field[string]
	Price            Field[decimal.Decimal]
	Stock            Field[int]
	Discount         Field[*int]
	SKU              Field[string]
	Dues             Field[*int]
	CreatedBy        Field[int]
	ImageFront       Field[string]
	ImageBack        Field[string]
	AdditionalImages Field[*string]
	LicenceName      string
	CategoryName     string
	LicenceDefaults  domain.TaxonomyDefaults
	CategoryDefaults domain.TaxonomyDefaults
}

var requiredProductFields = []string{"product_name", "product_description", "price", "stock", "sku", "licence", "category"}

const defaultCreatedBy = 1

type typeError struct {
	field  string
	detail string
}

func (e *typeError) Error() string { return e.field + ": " + e.detail }

func invalidTypes(err error) error {
	return domain.Validation("Invalid data types: %v", err)
}

// Product normalises a raw creation payload (form values or decoded JSON).
// It never panics on odd input; every rejection is a domain validation error.
func Product(raw map[string]any) (ProductInput, error) {
	var missing []string
	for _, f := range requiredProductFields {
		ok := present(raw[f])
		if f == "licence" || f == "category" {
			ok = ok || present(raw[f+"_name"]) || present(raw[f+"_id"])
		}
		if !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return ProductInput{}, domain.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}

	in := ProductInput{
		Name:        toString(raw["product_name"]),
		Description: toString(raw["product_description"]),
		SKU:         toString(raw["sku"]),
		ImageFront:  toString(raw["image_front"]),
		ImageBack:   toString(raw["image_back"]),
		CreatedBy:   defaultCreatedBy,
		LicenceDefaults: domain.TaxonomyDefaults{
			Description: toString(raw["licence_description"]),
			Image:       toString(raw["licence_image"]),
		},
		CategoryDefaults: domain.TaxonomyDefaults{
			Description: toString(raw["category_description"]),
			Image:       toString(raw["image_category"]),
		},
	}

	var err error
	if in.Price, err = toDecimal("price", raw["price"]); err != nil {
		return ProductInput{}, invalidTypes(err)
	}
	if in.Stock, err = toInt("stock", raw["stock"]); err != nil {
		return ProductInput{}, invalidTypes(err)
	}
	if in.Discount, err = optInt("discount", raw["discount"]); err != nil {
		return ProductInput{}, invalidTypes(err)
	}
	if in.Dues, err = optInt("dues", raw["dues"]); err != nil {
		return ProductInput{}, invalidTypes(err)
	}
	createdBy, err := optInt("created_by", raw["created_by"])
	if err != nil {
		return ProductInput{}, invalidTypes(err)
	}
	if createdBy != nil {
		in.CreatedBy = *createdBy
	}
	if in.Licence, err = referenceOf(raw, "licence"); err != nil {
		return ProductInput{}, invalidTypes(err)
	}
	if in.Category, err = referenceOf(raw, "category"); err != nil {
		return ProductInput{}, invalidTypes(err)
	}
	missing = missing[:0]
	if in.Licence.IsZero() {
		missing = append(missing, "licence")
	}
	if in.Category.IsZero() {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return ProductInput{}, domain.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}
	in.AdditionalImages = AdditionalImages(raw["additional_images"])
	return in, nil
}

// ProductPatchFrom normalises a partial update with the same coercion rules as
// Product. Only keys present in raw are marked Set.
func ProductPatchFrom(raw map[string]any) (ProductPatch, error) {
	var p ProductPatch
	var err error

	if v, ok := raw["product_name"]; ok {
		p.Name = set(toString(v))
	}
	if v, ok := raw["product_description"]; ok {
		p.Description = set(toString(v))
	}
	if v, ok := raw["sku"]; ok {
		p.SKU = set(toString(v))
	}
	// A blank image value is an empty file input, not a request to clear.
	if v := raw["image_front"]; present(v) {
		p.ImageFront = set(toString(v))
	}
	if v := raw["image_back"]; present(v) {
		p.ImageBack = set(toString(v))
	}
	if v := raw["additional_images"]; present(v) {
		p.AdditionalImages = set(AdditionalImages(v))
	}
	if v, ok := raw["price"]; ok {
		d, err := toDecimal("price", v)
		if err != nil {
			return ProductPatch{}, invalidTypes(err)
		}
		p.Price = set(d)
	}
	if v, ok := raw["stock"]; ok {
		n, err := toInt("stock", v)
		if err != nil {
			return ProductPatch{}, invalidTypes(err)
		}
		p.Stock = set(n)
	}
	if v, ok := raw["created_by"]; ok {
		n, err := optInt("created_by", v)
		if err != nil {
			return ProductPatch{}, invalidTypes(err)
		}
		if n != nil {
			p.CreatedBy = set(*n)
		}
	}
	if v, ok := raw["discount"]; ok {
		n, err := optInt("discount", v)
		if err != nil {
			return ProductPatch{}, invalidTypes(err)
		}
		p.Discount = set(n)
	}
	if v, ok := raw["dues"]; ok {
		n, err := optInt("dues", v)
		if err != nil {
			return ProductPatch{}, invalidTypes(err)
		}
		p.Dues = set(n)
	}

	if p.LicenceName, err = patchName(raw, "licence"); err != nil {
		return ProductPatch{}, err
	}
	if p.CategoryName, err = patchName(raw, "category"); err != nil {
		return ProductPatch{}, err
	}
	p.LicenceDefaults = domain.TaxonomyDefaults{
		Description: toString(raw["licence_description"]),
		Image:       toString(raw["licence_image"]),
	}
	p.CategoryDefaults = domain.TaxonomyDefaults{
		Description: toString(raw["category_description"]),
		Image:       toString(raw["image_category"]),
	}
	return p, nil
}

// patchName resolves the licence/category of an update. Updates only accept
// names; an id-shaped value is rejected instead of becoming a row named "3".
func patchName(raw map[string]any, key string) (string, error) {
	_, direct := raw[key]
	_, alias := raw[key+"_name"]
	if !direct && !alias {
		return "", nil
	}
	ref, err := referenceOf(raw, key)
	if err != nil {
		return "", invalidTypes(err)
	}
	if ref.IsID() {
		return "", domain.Validation("%s must be given by name when updating a product", key)
	}
	if ref.Name() == "" {
		return "", domain.Validation("%s name cannot be empty", key)
	}
	return ref.Name(), nil
}

// Reference resolves the licence or category reference carried by raw.
func Reference(raw map[string]any, key string) (domain.Reference, error) {
	return referenceOf(raw, key)
}

// referenceOf collapses the accepted shapes of a licence/category reference
// (<key>_id, <key>, <key>_name, numeric <key>, nested object) into one value.
func referenceOf(raw map[string]any, key string) (domain.Reference, error) {
	if v := raw[key+"_id"]; present(v) {
		id, err := optInt(key+"_id", v)
		if err != nil {
			return domain.Reference{}, err
		}
		if id != nil && *id > 0 {
			return domain.ByID(int64(*id)), nil
		}
	}
	v := raw[key]
	if !present(v) {
		v = raw[key+"_name"]
	}
	switch x := v.(type) {
	case nil:
		return domain.Reference{}, nil
	case string:
		return domain.ByName(strings.TrimSpace(x)), nil
	case map[string]any:
		if id := firstPresent(x, key+"_id", "id"); id != nil {
			n, err := toInt(key+"_id", id)
			if err != nil {
				return domain.Reference{}, err
			}
			return domain.ByID(int64(n)), nil
		}
		return domain.ByName(strings.TrimSpace(toString(firstPresent(x, key+"_name", "name")))), nil
	default:
		n, err := toInt(key, x)
		if err != nil {
			return domain.Reference{}, err
		}
		return domain.ByID(int64(n)), nil
	}
}

// AdditionalImages canonicalises the extra-image list to a JSON array string,
// or nil when empty. A malformed JSON string counts as "no images" rather than
// an error; clients have relied on that.
func AdditionalImages(v any) *string {
	var list []string
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(x), &list); err != nil {
			return nil
		}
	case []string:
		list = x
	case []any:
		for _, e := range x {
			if s, ok := e.(string); ok {
				list = append(list, s)
			}
		}
	default:
		return nil
	}
	out := list[:0:0]
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// DecodeImages reads a stored additional_images value back into a list.
func DecodeImages(s *string) []string {
	if s == nil || *s == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(*s), &list); err != nil {
		return nil
	}
	return list
}

func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	default:
		return true
	}
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if present(m[k]) {
			return m[k]
		}
	}
	return nil
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func toDecimal(field string, v any) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(x))
	case json.Number:
		d, err = decimal.NewFromString(x.String())
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return decimal.Decimal{}, &typeError{field: field, detail: fmt.Sprintf("%q is not a number", toString(v))}
	}
	return d.Round(2), nil
}

func toInt(field string, v any) (int, error) {
	bad := &typeError{field: field, detail: fmt.Sprintf("%q is not an integer", toString(v))}
	switch x := v.(type) {
	case string:
		n, err := parseInt(strings.TrimSpace(x))
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, bad
		}
		return int(n), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, bad
		}
		return int(n), nil
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt32 || x < math.MinInt32 {
			return 0, bad
		}
		return int(x), nil
	case int:
		return x, nil
	case int64:
		return int(x), nil
	default:
		return 0, bad
	}
}

// optInt treats absent, blank and zero as "not set".
func optInt(field string, v any) (*int, error) {
	if !present(v) {
		return nil, nil
	}
	n, err := toInt(field, v)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return &n, nil
}

func parseInt(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
