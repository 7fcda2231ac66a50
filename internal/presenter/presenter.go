// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter renders addresses as localized, column aligned text for terminal output.
package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/spreak"
	"github.com/vorlif/spreak/localize"

	"github.com/douira/vodafone-api-crawl/internal/address"
)

const columnGap = "  "

var (
	headerPostcode    localize.MsgID = "Postcode"
	headerStreet      localize.MsgID = "Street"
	headerHouseNumber localize.MsgID = "House number"
	headerExternalID  localize.MsgID = "External id"
	headerSource      localize.MsgID = "Source"
)

// Presenter writes addresses to a writer.
type Presenter struct {
	localizer *spreak.Localizer
}

// New returns a Presenter translating its labels with localizer.
func New(localizer *spreak.Localizer) *Presenter {
	return &Presenter{localizer: localizer}
}

// Address writes a single address as a block of label and value lines.
func (p *Presenter) Address(w io.Writer, addr address.Address) error {
	rows := [][]string{
		{p.localizer.Get(headerPostcode), addr.Postcode},
		{p.localizer.Get(headerStreet), addr.Street},
		{p.localizer.Get(headerHouseNumber), addr.HouseNumber},
	}
	if addr.ExternalID != "" {
		rows = append(rows, []string{p.localizer.Get(headerExternalID), addr.ExternalID})
	}
	return writeRows(w, rows)
}

// AddressTable writes addrs as a table with one address per line, followed by a summary line.
func (p *Presenter) AddressTable(w io.Writer, addrs []address.Address) error {
	if len(addrs) == 0 {
		_, err := fmt.Fprintln(w, p.localizer.Get("No addresses found"))
		return err
	}

	rows := make([][]string, 0, len(addrs)+1)
	rows = append(rows, []string{
		p.localizer.Get(headerPostcode),
		p.localizer.Get(headerStreet),
		p.localizer.Get(headerHouseNumber),
		p.localizer.Get(headerSource),
	})
	for _, addr := range addrs {
		rows = append(rows, []string{addr.Postcode, addr.Street, addr.HouseNumber, p.source(addr)})
	}
	if err := writeRows(w, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, p.localizer.NGetf("%d address found", "%d addresses found", len(addrs), len(addrs)))
	return err
}

func (p *Presenter) source(addr address.Address) string {
	switch {
	case addr.Interpolated != "":
		return p.localizer.Get("interpolated") + " (" + string(addr.Interpolated) + ")"
	case addr.SeparatedList:
		return p.localizer.Get("list")
	default:
		return p.localizer.Get("direct")
	}
}

// writeRows pads every column to the display width of its widest cell. The last column is not
// padded.
func writeRows(w io.Writer, rows [][]string) error {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var line strings.Builder
	for _, row := range rows {
		line.Reset()
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				break
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]))
			line.WriteString(columnGap)
		}
		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
