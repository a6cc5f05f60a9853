// Command cusumflate reads arbitrary bytes from stdin and writes a
// bit-exact gzip stream to stdout. It takes no arguments, reads no
// environment variables, and touches no files besides stdin/stdout.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/colinmarc/cusumflate/deflate"
)

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	enc := deflate.NewEncoder(out)

	r := bufio.NewReaderSize(in, 1<<16)
	buf := make([]byte, 1<<16)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := enc.Write(buf[:n]); werr != nil {
				return fmt.Errorf("cusumflate: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("cusumflate: reading stdin: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("cusumflate: %w", err)
	}
	return nil
}
