package reload

// ReloadMutation reloads one repository location and selects every member of the result union
// so rejections can be told apart from success.
const ReloadMutation = `
mutation ReloadRepositoryLocationMutation($location: String!) {
  reloadRepositoryLocation(repositoryLocationName: $location) {
    ... on WorkspaceLocationEntry {
      id
      loadStatus
      locationOrLoadError {
        ... on RepositoryLocation {
          id
          __typename
        }
        ... on PythonError {
          message
          stack
        }
        __typename
      }
      __typename
    }
    ... on UnauthorizedError {
      message
      __typename
    }
    ... on ReloadNotSupported {
      message
      __typename
    }
    ... on RepositoryLocationNotFound {
      message
      __typename
    }
    ... on PythonError {
      message
      stack
    }
    __typename
  }
}
`

// errorTypeNames are the members of the mutation result that mean the reload was rejected.
var errorTypeNames = map[string]bool{
	"UnauthorizedError":          true,
	"ReloadNotSupported":         true,
	"RepositoryLocationNotFound": true,
	"PythonError":                true,
}
