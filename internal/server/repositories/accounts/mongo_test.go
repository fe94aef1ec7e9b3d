package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestIdentifierFilter(t *testing.T) {
	f := IdentifierFilter("a@x.io")
	assert.Equal(t, bson.M{"$or": bson.A{bson.M{"email": "a@x.io"}, bson.M{"phone": "a@x.io"}}}, f)
}

func TestIndexes_UniqueContactFields(t *testing.T) {
	idx := Indexes()
	assert.Len(t, idx, 3)
	assert.Equal(t, bson.D{{Key: "email", Value: 1}}, idx[0].Keys)
	assert.Equal(t, bson.D{{Key: "phone", Value: 1}}, idx[1].Keys)
	assert.NotNil(t, idx[0].Options)
	assert.NotNil(t, idx[1].Options)
}
