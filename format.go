package glog

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FormatRecord renders a record in glog layout:
// [<flag>MMDDYY HH:MM:SS.ffffff <pid>  <file>:<line>] <message>
func FormatRecord(r Record) string {
	return string(appendRecord(make([]byte, 0, 64+len(r.Message)), r))
}

// appendRecord is the allocation-friendly form of FormatRecord, no trailing newline
func appendRecord(buf []byte, r Record) []byte {
	buf = append(buf, '[', r.Flag)
	buf = r.Time.AppendFormat(buf, timestampLayout)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(r.PID), 10)
	buf = append(buf, ' ', ' ')
	buf = append(buf, filepath.Base(r.File)...)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(r.Line), 10)
	buf = append(buf, ']', ' ')
	buf = append(buf, r.Message...)
	return buf
}

// FormatFrame renders one stack frame as "\t@\t<file>::<function>:<line>\t<code>\n".
// code is the trimmed source text of the line when it can be read from disk.
func FormatFrame(f Frame, withCode bool) string {
	var sb strings.Builder
	sb.WriteString("\t@\t")
	sb.WriteString(filepath.Base(f.File))
	sb.WriteString("::")
	sb.WriteString(f.Function)
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(f.Line))
	sb.WriteByte('\t')
	if withCode {
		sb.WriteString(sourceLine(f.File, f.Line))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// sourceCache holds the lines of source files already read for stack dumps
var sourceCache sync.Map // map[string][]string

// sourceLine returns the trimmed text of line n in file, or "" if unavailable
func sourceLine(file string, n int) string {
	if n <= 0 || file == "" {
		return ""
	}
	var lines []string
	if cached, ok := sourceCache.Load(file); ok {
		lines = cached.([]string)
	} else {
		lines = readLines(file)
		sourceCache.Store(file, lines)
	}
	if n > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[n-1])
}

func readLines(file string) []string {
	f, err := os.Open(file)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
