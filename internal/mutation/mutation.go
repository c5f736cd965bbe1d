package mutation

import (
	"fmt"

	"cloud.google.com/go/datastore/apiv1/datastorepb"

	"github.com/web3-inreach/jentity/internal/config"
)

// Build wraps entities into a non-transactional commit request, one mutation
// per entity, in input order.
func Build(projectID, databaseID string, entities []*datastorepb.Entity, operation string) (*datastorepb.CommitRequest, error) {
	mutations := make([]*datastorepb.Mutation, 0, len(entities))
	for i, entity := range entities {
		m, err := mutationFor(entity, operation)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		mutations = append(mutations, m)
	}

	return &datastorepb.CommitRequest{
		ProjectId:  projectID,
		DatabaseId: databaseID,
		Mode:       datastorepb.CommitRequest_NON_TRANSACTIONAL,
		Mutations:  mutations,
	}, nil
}

func mutationFor(entity *datastorepb.Entity, operation string) (*datastorepb.Mutation, error) {
	switch operation {
	case config.OperationUpsert, "":
		return &datastorepb.Mutation{Operation: &datastorepb.Mutation_Upsert{Upsert: entity}}, nil
	case config.OperationInsert:
		return &datastorepb.Mutation{Operation: &datastorepb.Mutation_Insert{Insert: entity}}, nil
	case config.OperationUpdate:
		if !complete(entity.GetKey()) {
			return nil, fmt.Errorf("update requires a complete key")
		}
		return &datastorepb.Mutation{Operation: &datastorepb.Mutation_Update{Update: entity}}, nil
	default:
		return nil, fmt.Errorf("unknown operation '%s'", operation)
	}
}

// complete reports whether the last path element carries a name or id
func complete(key *datastorepb.Key) bool {
	path := key.GetPath()
	if len(path) == 0 {
		return false
	}
	return path[len(path)-1].GetIdType() != nil
}
