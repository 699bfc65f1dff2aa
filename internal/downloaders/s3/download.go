package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/tanq16/godotfetch/internal/utils"
)

func (s *Source) Fetch(ctx context.Context, chunk utils.Chunk, ranged bool, w io.Writer) error {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	}
	if ranged {
		input.Range = aws.String(fmt.Sprintf("bytes=%d-%d", chunk.Start, chunk.End))
	}
	result, err := s.client.GetObject(ctx, input)
	if err != nil {
		return fmt.Errorf("error getting object: %w", err)
	}
	defer result.Body.Close()

	buffer := make([]byte, utils.DefaultBufferSize)
	if _, err := io.CopyBuffer(w, result.Body, buffer); err != nil {
		return fmt.Errorf("error reading object: %w", err)
	}
	return nil
}
