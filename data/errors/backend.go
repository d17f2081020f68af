package errors

func UnknownContentType(detail string) error {
	return newError(ErrUnknownFileContentType, nil, "%s", detail)
}

func ImageLoad(err error) error {
	return newError(ErrImageLoad, err, "decode")
}

func Timestamp(ts int64) error {
	return newError(ErrTimestamp, nil, "timestamp from %d failed", ts)
}

func ItemNotFound(id int64) error {
	return newError(ErrItemNotFound, nil, "id %d", id)
}

func NoSuchRepo(ref any) error {
	return newError(ErrNoSuchRepo, nil, "'%v'", ref)
}

func UsedRepoName(name string) error {
	return newError(ErrUsedRepoName, nil, "'%s'", name)
}

func TagNotFound(format string, args ...any) error {
	return newError(ErrTagNotFound, nil, format, args...)
}

func Invalid(format string, args ...any) error {
	return newError(ErrInvalid, nil, format, args...)
}
