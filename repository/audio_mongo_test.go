package repository

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoIDFilterMatchesLegacyObjectIDs(t *testing.T) {
	hex := "65A1B2C3D4E5F60718293A4B"
	oid, _ := primitive.ObjectIDFromHex("65a1b2c3d4e5f60718293a4b")

	in := mongoIDFilter([]string{hex, "not-hex"})["_id"].(bson.M)["$in"].(bson.A)
	want := bson.A{"65a1b2c3d4e5f60718293a4b", oid, "not-hex"}
	if len(in) != len(want) {
		t.Fatalf("$in = %v, want %v", in, want)
	}
	for i := range want {
		if in[i] != want[i] {
			t.Errorf("$in[%d] = %v, want %v", i, in[i], want[i])
		}
	}
}

func TestMongoFilter(t *testing.T) {
	q := mongoFilter(Filter{Pattern: "lo.*fi", Type: "Music"})
	typ := q["type"].(primitive.Regex)
	if typ.Pattern != "^Music$" || typ.Options != "i" {
		t.Errorf("type filter = %+v", typ)
	}
	or := q["$or"].(bson.A)
	if len(or) != 3 {
		t.Fatalf("$or has %d clauses, want 3", len(or))
	}
	if re := or[0].(bson.M)[FieldTitle].(primitive.Regex); re.Pattern != "lo.*fi" || re.Options != "i" {
		t.Errorf("title clause = %+v", re)
	}
	if len(mongoFilter(Filter{})) != 0 {
		t.Error("zero Filter should match everything")
	}
}
