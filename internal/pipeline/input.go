package pipeline

import (
	"context"

	"github.com/tigerroll/standlake/internal/manifest"
	"github.com/tigerroll/standlake/pkg/storage"
	"github.com/tigerroll/standlake/pkg/util/exception"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// LatestInput selects the snapshot a stage should consume: the latest
// snapshot the producer stage recorded in the manifest, or, when the
// manifest has none, the object with the greatest timestamp token under the
// given prefix whose name ends in the given extension. The boolean reports
// whether any input was found.
func LatestInput(ctx context.Context, repo manifest.Repository, conn storage.StorageConnection, producerStage, bucket, prefix, ext string) (token string, objectKey string, found bool, err error) {
	snapshot, err := repo.LatestSnapshot(ctx, producerStage)
	if err != nil {
		return "", "", false, err
	}
	if snapshot != nil {
		logger.Debugf("Manifest selected snapshot '%s' (token %s) for stage '%s'.", snapshot.ObjectKey, snapshot.Token, producerStage)
		return snapshot.Token, snapshot.ObjectKey, true, nil
	}

	var names []string
	err = conn.ListObjects(ctx, bucket, prefix+"/", func(objectName string) error {
		names = append(names, objectName)
		return nil
	})
	if err != nil {
		return "", "", false, exception.NewStageError("pipeline", "failed to list input objects", err, true)
	}

	token, objectKey, found = LatestToken(names, ext)
	if found {
		logger.Debugf("Listing selected object '%s' (token %s) under prefix '%s/'.", objectKey, token, prefix)
	}
	return token, objectKey, found, nil
}
