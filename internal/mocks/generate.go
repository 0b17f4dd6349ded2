package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Directory --dir ../domain/member --output domain/member --outpkg membermock --filename directory_mock.go
