package codec

import (
	"github.com/mdobak/go-xerrors"
)

var (
	ErrInvalidMagic         = xerrors.Message("invalid fingerprint magic")
	ErrInvalidFormatVersion = xerrors.Message("invalid format version")
	ErrTruncated            = xerrors.Message("truncated fingerprint data")
	ErrDecompress           = xerrors.Message("failed to decompress fingerprint")
	ErrInvalidBase64        = xerrors.Message("invalid base64 fingerprint")
)
