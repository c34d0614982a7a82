package gateway

import "github.com/shurcooL/githubv4"

type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

type userProfileQuery struct {
	User struct {
		ID        string
		Login     string
		CreatedAt githubv4.DateTime
		Followers struct {
			TotalCount int
		}
	} `graphql:"user(login: $login)"`
}

type repositoryCountQuery struct {
	User struct {
		Repositories struct {
			TotalCount int
		} `graphql:"repositories(ownerAffiliations: [OWNER])"`
	} `graphql:"user(login: $login)"`
}

// starTotalQuery reads stargazer counts of owned repositories, most starred first.
type starTotalQuery struct {
	User struct {
		Repositories struct {
			PageInfo pageInfo
			Nodes    []struct {
				Stargazers struct {
					TotalCount int
				}
			}
		} `graphql:"repositories(first: 100, after: $cursor, ownerAffiliations: [OWNER], orderBy: {field: STARGAZERS, direction: DESC})"`
	} `graphql:"user(login: $login)"`
}

type contributionYearsQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionYears []int
		}
	} `graphql:"user(login: $login)"`
}

type yearContributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			TotalCommitContributions int
			ContributionCalendar     struct {
				TotalContributions int
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// repositoriesQuery lists repositories with the commit count of their
// default branch. DefaultBranchRef is nil for empty repositories.
type repositoriesQuery struct {
	User struct {
		Repositories struct {
			PageInfo pageInfo
			Nodes    []struct {
				NameWithOwner    string
				DefaultBranchRef *struct {
					Target struct {
						Commit struct {
							History struct {
								TotalCount int
							}
						} `graphql:"... on Commit"`
					}
				}
			}
		} `graphql:"repositories(first: 60, after: $cursor, ownerAffiliations: $affiliations)"`
	} `graphql:"user(login: $login)"`
}

type historyNode struct {
	Author struct {
		User *struct {
			ID string
		}
	}
	Additions int
	Deletions int
}

type historyQuery struct {
	Repository struct {
		DefaultBranchRef *struct {
			Target struct {
				Commit struct {
					History struct {
						PageInfo pageInfo
						Nodes    []historyNode
					} `graphql:"history(first: 100, after: $cursor)"`
				} `graphql:"... on Commit"`
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}
