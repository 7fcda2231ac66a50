// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package overpass

import (
	"strconv"
	"strings"

	"github.com/douira/vodafone-api-crawl/internal/osm"
)

// QueryTimeout is the server side timeout in seconds embedded into every query.
const QueryTimeout = 25

// DirectAddressQuery selects all ways carrying a house number within radius meters around the
// origin element. Only tags are requested.
func DirectAddressQuery(originID int64, radius float64) string {
	var b strings.Builder
	writeHeader(&b, originID)
	b.WriteString("way(around.origin:")
	b.WriteString(formatRadius(radius))
	b.WriteString(")[\"")
	b.WriteString(osm.TagHouseNumber)
	b.WriteString("\"];\nout tags;")
	return b.String()
}

// InterpolationQuery selects the interpolation ways within radius meters around the origin
// element together with their member nodes, and all nodes carrying a house number in the same
// area.
func InterpolationQuery(originID int64, radius float64) string {
	around := "(around.origin:" + formatRadius(radius) + ")"

	var b strings.Builder
	writeHeader(&b, originID)
	b.WriteString("(\n  way")
	b.WriteString(around)
	b.WriteString("[\"")
	b.WriteString(osm.TagInterpolation)
	b.WriteString("\"];\n  node(w);\n  node")
	b.WriteString(around)
	b.WriteString("[\"")
	b.WriteString(osm.TagHouseNumber)
	b.WriteString("\"];\n);\nout body;")
	return b.String()
}

func writeHeader(b *strings.Builder, originID int64) {
	id := strconv.FormatInt(originID, 10)
	b.WriteString("[out:json][timeout:")
	b.WriteString(strconv.Itoa(QueryTimeout))
	b.WriteString("];\n(node(")
	b.WriteString(id)
	b.WriteString(");way(")
	b.WriteString(id)
	b.WriteString(");)->.origin;\n")
}

func formatRadius(radius float64) string {
	return strconv.FormatFloat(radius, 'f', -1, 64)
}
