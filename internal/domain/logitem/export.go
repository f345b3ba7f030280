package logitem

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var exportRule = strings.Repeat("=", 50)

// WriteMonth renders day logs as the plain-text month archive.
func WriteMonth(w io.Writer, days []DayLog) error {
	bw := bufio.NewWriter(w)
	for _, day := range days {
		fmt.Fprintf(bw, "%s\nDATE: %s\n%s\n", exportRule, day.Date, exportRule)
		for idx, item := range day.Items {
			status := "[ ]"
			if item.IsDone {
				status = "[v]"
			}
			tagStr := ""
			if len(item.Tags) > 0 {
				tagStr = fmt.Sprintf(" (#%s)", item.Tags.String())
			}
			fmt.Fprintf(bw, "%d. %s %s%s\n", idx+1, status, item.Title, tagStr)
			if item.Content != "" {
				fmt.Fprintf(bw, "   Note: %s\n", item.Content)
			}
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// MonthKey turns a YYYY-MM-DD date into the YYYYMM archive key.
func MonthKey(date string) string {
	return strings.ReplaceAll(date, "-", "")[:6]
}
