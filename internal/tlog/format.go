package tlog

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	fieldThread  = "tid"
	fieldSource  = "source"
	fieldElapsed = "elapsed"
	fieldRegions = "regions"
	fieldIndent  = "indent"
)

const timestampLayout = "2006-01-02 15:04:05"

const header = "[Timestamp          ][TID  ][Source    ][Elapsed  ][Message                   ]\n" +
	"-------------------------------------------------------------------------------\n"

type regionStamp struct {
	name    string
	elapsed time.Duration
}

// lineFormatter renders entries as
// [timestamp][tid][source][elapsed] [region: ms] ...<indent>message
type lineFormatter struct {
	timestamps bool
}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	if f.timestamps {
		tid, _ := entry.Data[fieldThread].(uint32)
		src, _ := entry.Data[fieldSource].(Source)
		elapsed, _ := entry.Data[fieldElapsed].(time.Duration)

		fmt.Fprintf(&b, "[%s][%5d][%10s][%8.3fs] ",
			entry.Time.Format(timestampLayout), tid, src.String(), elapsed.Seconds())

		regions, _ := entry.Data[fieldRegions].([]regionStamp)
		for _, region := range regions {
			fmt.Fprintf(&b, "[%s: %7.3fms] ", region.name, float64(region.elapsed)/float64(time.Millisecond))
		}
	}

	indent, _ := entry.Data[fieldIndent].(int)
	b.WriteString(strings.Repeat("    ", indent))

	b.WriteString(entry.Message)
	if !strings.HasSuffix(entry.Message, "\n") {
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}
