package catalog

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ProductID is a document _id in portable string form. ObjectIDs decode to
// their hex string; strings and integers are kept as written.
type ProductID string

// NewProductID converts an ObjectID.
func NewProductID(oid bson.ObjectID) ProductID {
	return ProductID(oid.Hex())
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (id *ProductID) UnmarshalBSONValue(typ byte, data []byte) error {
	rv := bson.RawValue{Type: bson.Type(typ), Value: data}
	switch rv.Type {
	case bson.TypeObjectID:
		oid, ok := rv.ObjectIDOK()
		if !ok {
			return fmt.Errorf("decode _id: malformed objectid")
		}
		*id = NewProductID(oid)
	case bson.TypeString:
		s, ok := rv.StringValueOK()
		if !ok {
			return fmt.Errorf("decode _id: malformed string")
		}
		*id = ProductID(s)
	case bson.TypeInt32:
		n, _ := rv.Int32OK()
		*id = ProductID(strconv.FormatInt(int64(n), 10))
	case bson.TypeInt64:
		n, _ := rv.Int64OK()
		*id = ProductID(strconv.FormatInt(n, 10))
	case bson.TypeNull, bson.TypeUndefined:
		*id = ""
	default:
		*id = ProductID(rv.String())
	}
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler. Hex strings that parse as
// an ObjectID are written back as one.
func (id ProductID) MarshalBSONValue() (byte, []byte, error) {
	if oid, err := bson.ObjectIDFromHex(string(id)); err == nil {
		typ, data, err := bson.MarshalValue(oid)
		return byte(typ), data, err
	}
	typ, data, err := bson.MarshalValue(string(id))
	return byte(typ), data, err
}

// Product is a catalog record. Only the summary projection is loaded by
// Store, so Description is usually empty.
type Product struct {
	ID                       ProductID     `bson:"_id,omitempty" json:"_id"`
	Name                     string        `bson:"productName" json:"productName"`
	Slug                     string        `bson:"productSlug,omitempty" json:"productSlug,omitempty"`
	Images                   []string      `bson:"productImage,omitempty" json:"productImage"`
	Price                    float64       `bson:"price" json:"price"`
	Discount                 float64       `bson:"discount,omitempty" json:"discount,omitempty"`
	TotalAmountAfterDiscount *float64      `bson:"totalAmountAfterDiscount,omitempty" json:"totalAmountAfterDiscount,omitempty"`
	Brand                    string        `bson:"brand,omitempty" json:"brand,omitempty"`
	Category                 string        `bson:"category,omitempty" json:"category,omitempty"`
	Features                 []string      `bson:"features,omitempty" json:"features,omitempty"`
	Summary                  string        `bson:"summary,omitempty" json:"summary,omitempty"`
	Description              string        `bson:"description,omitempty" json:"description,omitempty"`
	AverageRating            float64       `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
	NumReviews               int           `bson:"numReviews,omitempty" json:"numReviews,omitempty"`
	Stock                    int           `bson:"stock" json:"stock"`

	// AIScore is set by Rank and never stored.
	AIScore int `bson:"-" json:"ai_score,omitempty"`
}

// IDHex returns the product id in portable string form.
func (p *Product) IDHex() string {
	return string(p.ID)
}

// UnitPrice prefers the discounted amount and falls back to the list price.
func (p *Product) UnitPrice() float64 {
	if p.TotalAmountAfterDiscount != nil {
		return *p.TotalAmountAfterDiscount
	}
	return p.Price
}

// PrimaryImage returns the first image or "".
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
