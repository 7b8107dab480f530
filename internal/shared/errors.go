package shared

import "errors"

var (

	// folder errors
	ErrFolderNotFound   = errors.New("this folder does not exist")
	ErrFolderNameTaken  = errors.New("there is already a folder with the same name in this folder")
	ErrCannotModifyRoot = errors.New("root folder can't be modified")
	// ErrRootMissing means account provisioning never created the root
	// folder. It is an invariant violation, not a user-facing error.
	ErrRootMissing = errors.New("root folder is missing")

	// file errors
	ErrFileNotFound       = errors.New("this file does not exist")
	ErrFileNameTaken      = errors.New("a file with this name already exists in this folder")
	ErrSpaceLimitExceeded = errors.New("space limit exceeded")

	// sharing errors
	ErrCannotShareWithSelf     = errors.New("you can't share files with yourself")
	ErrAlreadyShared           = errors.New("this file is already shared")
	ErrNotShared               = errors.New("this file is not shared with the specified user")
	ErrDestinationUserNotFound = errors.New("this user does not exist")

	// blob store errors, surfaced when the upstream call fails
	ErrFileUpload   = errors.New("an unexpected error occurred while uploading the file")
	ErrFileRetrieve = errors.New("an unexpected error occurred while trying to retrieve the file")
	ErrFileDeletion = errors.New("an unexpected error occurred while deleting the file")
)
