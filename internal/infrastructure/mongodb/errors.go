package mongodb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func errInvalidID(id string) error {
	return fmt.Errorf("id inválido %q: se espera un ObjectID hexadecimal de 24 caracteres", id)
}

func parseIDs(hexes ...string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, len(hexes))
	for i, h := range hexes {
		oid, ok := objectID(h)
		if !ok {
			return nil, errInvalidID(h)
		}
		out[i] = oid
	}
	return out, nil
}
