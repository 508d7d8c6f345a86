package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Bucket is the GCS-backed Store.
type Bucket struct {
	bucket *storage.BucketHandle
	name   string
}

func NewBucket(ctx context.Context, bucketName string) (*Bucket, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &Bucket{bucket: client.Bucket(bucketName), name: bucketName}, nil
}

// LatestCSV scans prefix for CSV objects and downloads the one with the
// latest max(created, updated) timestamp. Feeds get re-uploaded in place, so
// creation time alone would miss refreshed inputs.
func (b *Bucket) LatestCSV(ctx context.Context, prefix string) (string, []byte, error) {
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: prefix + "/"})

	var (
		latestName string
		latestTime time.Time
		count      int
	)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("listing gs://%s/%s/: %w", b.name, prefix, err)
		}
		if !strings.HasSuffix(attrs.Name, ".csv") {
			continue
		}
		count++
		t := attrs.Created
		if attrs.Updated.After(t) {
			t = attrs.Updated
		}
		if t.After(latestTime) {
			latestTime = t
			latestName = attrs.Name
		}
	}

	if latestName == "" {
		return "", nil, fmt.Errorf("no CSV files found in gs://%s/%s/", b.name, prefix)
	}
	fmt.Printf("📄 Found %d file(s) in gs://%s/%s/\n", count, b.name, prefix)
	fmt.Printf("📌 Latest file: %s (%s)\n", latestName, latestTime.Format(time.RFC3339))

	r, err := b.bucket.Object(latestName).NewReader(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("opening gs://%s/%s: %w", b.name, latestName, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("downloading gs://%s/%s: %w", b.name, latestName, err)
	}

	base := latestName
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return base, data, nil
}

// Put uploads data as prefix/name.
func (b *Bucket) Put(ctx context.Context, prefix, name string, data []byte) error {
	objectName := prefix + "/" + name
	w := b.bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("uploading gs://%s/%s: %w", b.name, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("uploading gs://%s/%s: %w", b.name, objectName, err)
	}
	fmt.Printf("☁️  Uploaded gs://%s/%s\n", b.name, objectName)
	return nil
}
