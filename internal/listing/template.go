package listing

// ActionHeader is the File Exchange action column. It doubles as the sentinel
// that marks a workbook header row.
const ActionHeader = "*Action(SiteID=US|Country=US|Currency=USD|Version=1193)"

// Template is the column configuration one workbook variant is built
// against: the ordered header row, the defaults applied to every listing,
// the payload-field mapping, and the columns that business policies require
// to stay blank.
type Template struct {
	SheetName string
	Headers   []string
	// Required is the allow-list an existing workbook's header row is
	// checked against before any row is written.
	Required []string
	Defaults map[string]any
	// FieldMap maps lower-cased payload fields to column names.
	FieldMap map[string]string
	// ForcedBlank columns are cleared unconditionally as the final
	// normalization step; the eBay account's business policies supply
	// these values out-of-band.
	ForcedBlank map[string]struct{}

	TitleColumn  string
	MirrorColumn string
	// TruncateLimit bounds MirrorColumn and C:Author; 0 disables truncation.
	TruncateLimit int
}

var fileExchangeHeaders = []string{
	ActionHeader,
	"Custom label (SKU)",
	"Category ID",
	"Category name",
	"Title",
	"Relationship",
	"Relationship details",
	"Schedule Time",
	"P:ISBN",
	"P:EPID",
	"Start price",
	"Quantity",
	"Item photo URL",
	"VideoID",
	"Condition ID",
	"Description",
	"Format",
	"Duration",
	"Buy It Now price",
	"Best Offer Enabled",
	"Best Offer Auto Accept Price",
	"Minimum Best Offer Price",
	"Immediate pay required",
	"Location",
	"Shipping service 1 option",
	"Shipping service 1 cost",
	"Shipping service 1 priority",
	"Shipping service 2 option",
	"Shipping service 2 cost",
	"Shipping service 2 priority",
	"Max dispatch time",
	"Returns accepted option",
	"Returns within option",
	"Refund option",
	"Return shipping cost paid by",
	"Shipping profile name",
	"Return profile name",
	"Payment profile name",
	"C:Author",
	"C:Book Title",
	"C:Language",
	"C:Topic",
	"C:Publisher",
	"C:Format",
	"C:Genre",
	"C:Book Series",
	"C:Publication Year",
	"C:Original Language",
	"C:Features",
	"C:Type",
	"C:Country/Region of Manufacture",
	"C:Edition",
	"C:Narrative Type",
	"C:Signed",
	"C:Intended Audience",
	"C:Binding",
	"C:Subject",
	"C:Special Attributes",
	"Product Safety Pictograms",
	"Product Safety Statements",
	"Product Safety Component",
	"Regulatory Document Ids",
	"Manufacturer Name",
	"Manufacturer AddressLine1",
	"Manufacturer AddressLine2",
	"Manufacturer City",
	"Manufacturer Country",
	"Manufacturer PostalCode",
	"Manufacturer StateOrProvince",
	"Manufacturer Phone",
	"Manufacturer Email",
	"Manufacturer ContactURL",
	"Responsible Person 1",
	"Responsible Person 1 Type",
	"Responsible Person 1 AddressLine1",
	"Responsible Person 1 AddressLine2",
	"Responsible Person 1 City",
	"Responsible Person 1 Country",
	"Responsible Person 1 PostalCode",
	"Responsible Person 1 StateOrProvince",
	"Responsible Person 1 Phone",
	"Responsible Person 1 Email",
	"Responsible Person 1 ContactURL",
}

// FileExchange returns the full 82-column eBay File Exchange template used
// by the listings workbook. startPrice is a configuration value: some
// operators want a nonzero placeholder, others leave pricing for manual
// entry.
func FileExchange(startPrice string) Template {
	headers := make([]string, len(fileExchangeHeaders))
	copy(headers, fileExchangeHeaders)

	return Template{
		SheetName: "Listings",
		Headers:   headers,
		Required:  headers,
		Defaults: map[string]any{
			ActionHeader:            "Add",
			"Category ID":           "261186",
			"Category name":         "/Books & Magazines/Books",
			"Start price":           startPrice,
			"Quantity":              1,
			"Item photo URL":        "https://keith-ebay-images.s3.us-east-2.amazonaws.com/IMG_4929.JPG",
			"Condition ID":          "5000-Good",
			"Format":                "FixedPrice",
			"Duration":              "GTC",
			"Location":              "Newfields, NH",
			"Shipping profile name": "USPS Media Mail",
			"Return profile name":   "Returns allowed within 30 days",
			"Payment profile name":  "Immediate payment managed via eBay",
			"C:Language":            "English",
		},
		FieldMap: map[string]string{
			"title":     "Title",
			"author":    "C:Author",
			"edition":   "C:Edition",
			"year":      "C:Publication Year",
			"publisher": "C:Publisher",
		},
		ForcedBlank: map[string]struct{}{
			"Max dispatch time":            {},
			"Returns accepted option":      {},
			"Returns within option":        {},
			"Refund option":                {},
			"Return shipping cost paid by": {},
		},
		TitleColumn:   "Title",
		MirrorColumn:  "C:Book Title",
		TruncateLimit: 50,
	}
}

// Compact returns the minimal 18-column template used when building a
// workbook straight from text-mode agent outputs and URL manifests.
func Compact() Template {
	headers := []string{
		ActionHeader,
		"Category ID",
		"Category name",
		"Title",
		"Start price",
		"Quantity",
		"Item photo URL",
		"Condition ID",
		"Description",
		"Format",
		"Duration",
		"Location",
		"Shipping profile name",
		"Return profile name",
		"Payment profile name",
		"C:Author",
		"C:Book Title",
		"C:Language",
	}

	return Template{
		SheetName: "Listings",
		Headers:   headers,
		Required:  headers,
		Defaults: map[string]any{
			ActionHeader:            "Add",
			"Category ID":           "261186",
			"Category name":         "/Books & Magazines/Books",
			"Quantity":              "1",
			"Format":                "FixedPrice",
			"Duration":              "GTC",
			"Location":              "Newfields, NH",
			"Shipping profile name": "USPS Media Mail",
			"Return profile name":   "Returns allowed within 30 days",
			"Payment profile name":  "Immediate payment managed via eBay",
			"C:Language":            "English",
		},
		FieldMap:      map[string]string{},
		ForcedBlank:   map[string]struct{}{},
		TitleColumn:   "Title",
		MirrorColumn:  "C:Book Title",
		TruncateLimit: 60,
	}
}

// HasColumn reports whether name is part of the template's header row.
func (t Template) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
