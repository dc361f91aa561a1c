// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("prefs/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// Or with an existing client:
//
//	store := s3.NewStore(client, "my-bucket", s3.WithPrefix("prefs/"))
//
// # Crash Safety
//
// S3 replaces objects atomically: a PUT either fully supersedes the
// previous object or leaves it untouched, so readers never observe a torn
// blob. The backup-directory protocol of the filesystem store is therefore
// unnecessary here and Save is a single upload.
//
// # Features
//
//   - Multipart uploads for large blobs via the transfer manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
