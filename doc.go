// Package hbnb is the composition root of a small object store and its
// command shell.
//
// Records of a closed set of kinds (BaseModel, User, State, City, Amenity,
// Place and Review) live in an in-memory table keyed by "<Kind>.<id>". The
// table is mirrored to a single JSON file: Save rewrites the whole file
// atomically and Reload merges it back, rebuilding each record from its
// "__class__" tag.
//
// Features:
//
//   - **Explicit storage value**: no package globals; the table is created by Open and injected into the shell.
//   - **Typed schema**: declared fields are cast on assignment, undeclared ones inferred.
//   - **Typed Retrieval**: Generic wrapper (`NewTyped[T]`) for struct-backed access.
//   - **Optional git versioning** of the backing file and a **watch mode** that picks up external edits.
//
// Usage:
//
//	store, err := hbnb.Open(ctx, "file.json", hbnb.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	user, err := store.Create(hbnb.KindUser)
//	_ = user.Set("email", "betty@example.com")
//	err = user.Save(ctx)
package hbnb
