package errors

func Directory(err error, path string) error {
	return newError(ErrDirectory, err, "'%s'", path)
}

func DirectoryRename(err error, from, to string) error {
	return newError(ErrDirectory, err, "rename '%s' to '%s'", from, to)
}

func NoSuchFile(err error, path string) error {
	return newError(ErrNoSuchFile, err, "'%s'", path)
}

func Busy(path string) error {
	return newError(ErrBusy, nil, "handle of '%s' is in use", path)
}
