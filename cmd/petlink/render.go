package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	fcolor "github.com/fatih/color"

	"petlink/internal/notify"
	"petlink/pkg/domain"
)

type toastStyle struct {
	symbol string
	color  *fcolor.Color
}

func styleFor(sev notify.Severity) toastStyle {
	switch sev {
	case notify.Success:
		return toastStyle{symbol: "✔ ", color: fcolor.New(fcolor.FgGreen)}
	case notify.Warning:
		return toastStyle{symbol: "⚠ ", color: fcolor.New(fcolor.FgYellow)}
	default:
		return toastStyle{symbol: "✗ ", color: fcolor.New(fcolor.FgRed)}
	}
}

func writeStyled(w io.Writer, sev notify.Severity, msg string) {
	style := styleFor(sev)
	_, _ = style.color.Fprintf(w, "%s%s\n", style.symbol, msg)
}

// toastPrinter renders each shown toast once; expiry has no terminal effect.
func toastPrinter(w io.Writer) func(notify.Event) {
	return func(ev notify.Event) {
		if ev.Kind != notify.Shown {
			return
		}
		writeStyled(w, ev.Toast.Severity, ev.Toast.Message)
	}
}

func printSuccess(w io.Writer, msg string) { writeStyled(w, notify.Success, msg) }
func printError(w io.Writer, msg string)   { writeStyled(w, notify.Error, msg) }
func printWarning(w io.Writer, msg string) { writeStyled(w, notify.Warning, msg) }

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printOrders(w io.Writer, orders []domain.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tSTART\tEND\tOWNER")
	for _, o := range orders {
		owner := fmt.Sprint(o.OwnerID)
		if o.Owner != nil && o.Owner.Username != "" {
			owner = o.Owner.Username
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.Title, o.Status, o.StartDate, o.EndDate, owner)
	}
	return tw.Flush()
}

func printOrder(w io.Writer, o domain.Order) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%d\n", o.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", o.Title)
	if o.Description != nil && *o.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", *o.Description)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", o.Status)
	fmt.Fprintf(tw, "Start:\t%s\n", o.StartDate)
	fmt.Fprintf(tw, "End:\t%s\n", o.EndDate)
	if o.Owner != nil {
		fmt.Fprintf(tw, "Owner:\t%s\n", o.Owner.Username)
	}
	return tw.Flush()
}

func printMessages(w io.Writer, msgs []domain.Message) error {
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(w, "No messages yet.")
		return err
	}
	tw := newTable(w)
	for _, m := range msgs {
		name := m.SenderName()
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(tw, "#%d\t%s:\t%s\n", m.ID, name, strings.TrimSpace(m.Content))
	}
	return tw.Flush()
}

func printProposals(w io.Writer, ps []domain.Proposal) error {
	if len(ps) == 0 {
		_, err := fmt.Fprintln(w, "No proposals.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tORDER\tPETSITTER\tPRICE\tSTATUS\tCOMMENT")
	for _, p := range ps {
		comment := ""
		if p.Comment != nil {
			comment = *p.Comment
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n", p.ID, p.OrderID, p.PetsitterID, p.Price, p.Status, comment)
	}
	return tw.Flush()
}
