package routes

import pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"

var errNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "no route")
