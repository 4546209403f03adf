package pipeline

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// CompressionCodec maps a configured compression name to the parquet codec.
// An empty string or "NONE" selects uncompressed output.
func CompressionCodec(name string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(name) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return parquet.CompressionCodec_UNCOMPRESSED, fmt.Errorf("unsupported compression type: %s", name)
	}
}

// FinalizeParquet stops the writer and converts panics raised by the
// underlying library into errors, aggregating them with any WriteStop error.
func FinalizeParquet(pw *writer.ParquetWriter) error {
	var multiErr *multierror.Error
	func() {
		defer func() {
			if r := recover(); r != nil {
				multiErr = multierror.Append(multiErr, fmt.Errorf("parquet writer panicked during WriteStop: %v", r))
			}
		}()
		if err := pw.WriteStop(); err != nil {
			multiErr = multierror.Append(multiErr, err)
		}
	}()
	return multiErr.ErrorOrNil()
}
