package product

// relationEntry names the product IDs related to a catalog item, grouped by
// how they relate to it.
type relationEntry struct {
	Upgrades []string
	Related  []string
	Bundles  []string
}

// relations is the fixed upsell table. Products without an entry have no
// related items.
var relations = map[string]relationEntry{
	"software-basic": {
		Upgrades: []string{"software-pro", "software-enterprise"},
		Related:  []string{"plugin-pack", "support-package"},
		Bundles:  []string{"complete-suite"},
	},
	"ebook-beginner": {
		Upgrades: []string{"ebook-advanced", "video-course"},
		Related:  []string{"workbook", "templates"},
		Bundles:  []string{"learning-bundle"},
	},
}

// RelatedProducts groups catalog items related to a product for upselling.
type RelatedProducts struct {
	Upgrades []Product
	Related  []Product
	Bundles  []Product
}

// Related resolves the relation table for the given product ID against a
// catalog snapshot. Unknown IDs yield empty groups rather than an error.
func Related(catalog []Product, id string) RelatedProducts {
	entry := relations[id]
	return RelatedProducts{
		Upgrades: pick(catalog, entry.Upgrades),
		Related:  pick(catalog, entry.Related),
		Bundles:  pick(catalog, entry.Bundles),
	}
}

func pick(catalog []Product, ids []string) []Product {
	out := make([]Product, 0, len(ids))
	for _, p := range catalog {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
