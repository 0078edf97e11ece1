package catalog

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Filters is the structured form of a free-text product query.
type Filters struct {
	Category     string   `json:"category,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	ExcludeBrand string   `json:"exclude_brand,omitempty"`
	PriceMin     *int     `json:"price_min,omitempty"`
	PriceMax     *int     `json:"price_max,omitempty"`
	Features     []string `json:"features,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.Category == "" && f.Brand == "" && f.ExcludeBrand == "" &&
		f.PriceMin == nil && f.PriceMax == nil && len(f.Features) == 0
}

// hasPriceBound mirrors the catalog's historical behavior: a zero bound on
// its own does not constrain the query.
func (f Filters) hasPriceBound() bool {
	return (f.PriceMin != nil && *f.PriceMin != 0) || (f.PriceMax != nil && *f.PriceMax != 0)
}

func ciRegex(pattern string) bson.Regex {
	return bson.Regex{Pattern: pattern, Options: "i"}
}

// BuildQuery translates filters into a Mongo query document. Brand and
// category match case-insensitively as regular expressions; price bounds
// apply to totalAmountAfterDiscount.
func BuildQuery(f Filters) bson.D {
	query := bson.D{}

	switch {
	case f.Brand != "" && f.ExcludeBrand != "":
		query = append(query, bson.E{Key: "$and", Value: bson.A{
			bson.D{{Key: "brand", Value: ciRegex(f.Brand)}},
			bson.D{{Key: "brand", Value: bson.D{{Key: "$not", Value: ciRegex(f.ExcludeBrand)}}}},
		}})
	case f.Brand != "":
		query = append(query, bson.E{Key: "brand", Value: ciRegex(f.Brand)})
	case f.ExcludeBrand != "":
		query = append(query, bson.E{Key: "brand", Value: bson.D{{Key: "$not", Value: ciRegex(f.ExcludeBrand)}}})
	}

	if f.hasPriceBound() {
		price := bson.D{}
		if f.PriceMin != nil {
			price = append(price, bson.E{Key: "$gte", Value: *f.PriceMin})
		}
		if f.PriceMax != nil {
			price = append(price, bson.E{Key: "$lte", Value: *f.PriceMax})
		}
		query = append(query, bson.E{Key: "totalAmountAfterDiscount", Value: price})
	}

	if f.Category != "" {
		query = append(query, bson.E{Key: "category", Value: ciRegex(f.Category)})
	}

	return query
}

// BrandQuery matches every product of brand.
func BrandQuery(brand string) bson.D {
	return bson.D{{Key: "brand", Value: ciRegex(brand)}}
}

// SummaryProjection selects the fields returned to callers. Heavy fields such
// as description are excluded.
func SummaryProjection() bson.D {
	fields := []string{
		"_id", "productName", "productSlug", "productImage", "price", "discount",
		"totalAmountAfterDiscount", "brand", "category", "features", "summary",
		"averageRating", "numReviews", "stock",
	}
	proj := make(bson.D, 0, len(fields))
	for _, f := range fields {
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	return proj
}
