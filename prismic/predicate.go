package prismic

import (
	"strconv"
	"strings"
)

// Predicate is a single query predicate such as [at(document.type, "post")].
type Predicate string

// At matches documents where path equals value.
func At(path, value string) Predicate {
	return Predicate("[at(" + path + ", " + strconv.Quote(value) + ")]")
}

// DocumentType matches documents of the given custom type.
func DocumentType(docType string) Predicate {
	return At("document.type", docType)
}

// UID matches the document of docType with the given uid.
func UID(docType, uid string) Predicate {
	return At("my."+docType+".uid", uid)
}

func encodeQuery(preds []Predicate) string {
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = string(p)
	}
	return "[" + strings.Join(parts, "") + "]"
}
