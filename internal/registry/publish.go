package registry

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/mmr-tortoise/cratectl/internal/model"
)

// Publish uploads a package archive together with its metadata.
//
// The request body is
//
//	<u32 little-endian length of the JSON metadata>
//	<JSON metadata>
//	<u32 little-endian length of the archive>
//	<archive bytes>
//
// The archive is streamed from disk behind the in-memory header, under a
// Content-Length computed up front.
func (c *Client) Publish(ctx context.Context, krate *model.NewCrate, archivePath string) error {
	metadata, err := json.Marshal(krate)
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", krate, err)
	}

	stat, err := os.Stat(archivePath)
	if err != nil {
		return &Error{Kind: KindIO, Err: err}
	}
	header, err := EncodeUploadHeader(metadata, stat.Size())
	if err != nil {
		return err
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return &Error{Kind: KindIO, Err: err}
	}
	defer func() { _ = archive.Close() }()

	size := int64(len(header)) + stat.Size()
	c.logger.Debug("uploading package",
		"crate", krate.String(),
		"metadata", humanize.Bytes(uint64(len(metadata))),
		"archive", humanize.Bytes(uint64(stat.Size())),
		"total", humanize.Bytes(uint64(size)))

	body := NewUploadBody(header, archive)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.host+"/api/v1/crates/new", body)
	if err != nil {
		return &Error{Kind: KindTransport, Err: err}
	}
	req.ContentLength = size
	c.setHeaders(req)

	_, err = c.do(req)
	return err
}

// EncodeUploadHeader returns the bytes sent before the archive: the
// metadata length, the metadata and the archive length. Lengths beyond
// the u32 range cannot be framed and are rejected.
func EncodeUploadHeader(metadata []byte, archiveLen int64) ([]byte, error) {
	if uint64(len(metadata)) > math.MaxUint32 {
		return nil, &Error{Kind: KindIO, Err: fmt.Errorf("metadata of %d bytes exceeds the upload limit", len(metadata))}
	}
	if archiveLen < 0 || archiveLen > math.MaxUint32 {
		return nil, &Error{Kind: KindIO, Err: fmt.Errorf("archive of %s exceeds the upload limit", humanize.Bytes(uint64(archiveLen)))}
	}

	header := make([]byte, 0, 4+len(metadata)+4)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(metadata)))
	header = append(header, metadata...)
	header = binary.LittleEndian.AppendUint32(header, uint32(archiveLen))
	return header, nil
}

// NewUploadBody presents the header followed by the archive as one
// stream. The archive is read lazily as the transport consumes the body.
func NewUploadBody(header []byte, archive io.Reader) io.Reader {
	return io.MultiReader(bytes.NewReader(header), archive)
}
