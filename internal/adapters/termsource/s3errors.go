package termsource

import (
	"errors"

	perr "glossarysync/internal/platform/errors"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func classifyS3(err error, bucket, key string) error {
	loc := "s3://" + bucket + "/" + key

	var nsk *types.NoSuchKey
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsk) || errors.As(err, &nsb) {
		return perr.WithField(perr.Wrapf(err, perr.ErrorCodeNotFound, "term source %s does not exist", loc), loc)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return perr.WithField(perr.Wrapf(err, perr.ErrorCodeNotFound, "term source %s does not exist", loc), loc)
		case "AccessDenied":
			return perr.WithField(perr.Wrapf(err, perr.ErrorCodeForbidden, "access denied to %s", loc), loc)
		}
	}
	return perr.WithField(perr.Wrapf(err, perr.ErrorCodeUnavailable, "get %s", loc), loc)
}
