package firestoredb

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Filter é um filtro de igualdade/intervalo sobre um campo plano de uma
// coleção. O store não suporta joins; consultas compostas são resolvidas em
// memória pelos casos de uso.
type Filter struct {
	Path  string
	Op    string // "==", "<", "<=", ">", ">=", "in"
	Value interface{}
}

// Increment é um incremento atômico e comutativo de um campo numérico.
// Delta deve ser int64 para contadores e float64 para valores monetários,
// preservando o tipo do campo no documento.
type Increment struct {
	Field string
	Delta interface{}
}

// GetByID busca um documento pelo id. Retorna (nil, nil) quando o documento
// não existe, seguindo o contrato getById → Entity | null.
func (c *Connection) GetByID(ctx context.Context, collection, id string) (*firestore.DocumentSnapshot, error) {
	snap, err := c.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar documento %s/%s: %w", collection, id, err)
	}

	return snap, nil
}

// Query executa uma consulta com filtros de igualdade/intervalo sobre campos
// planos e retorna todos os documentos encontrados
func (c *Connection) Query(ctx context.Context, collection string, filters []Filter) ([]*firestore.DocumentSnapshot, error) {
	query := c.client.Collection(collection).Query
	for _, f := range filters {
		query = query.Where(f.Path, f.Op, f.Value)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var snaps []*firestore.DocumentSnapshot
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao consultar coleção %s: %w", collection, err)
		}
		snaps = append(snaps, snap)
	}

	return snaps, nil
}

// Create grava um novo documento com o id informado. Falha se já existir.
func (c *Connection) Create(ctx context.Context, collection, id string, data interface{}) error {
	if _, err := c.client.Collection(collection).Doc(id).Create(ctx, data); err != nil {
		return fmt.Errorf("erro ao criar documento %s/%s: %w", collection, id, err)
	}

	return nil
}

// Update aplica um patch parcial: apenas os campos presentes no mapa são
// escritos, os demais permanecem intocados
func (c *Connection) Update(ctx context.Context, collection, id string, patch map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(patch))
	for path, value := range patch {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	if _, err := c.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("erro ao atualizar documento %s/%s: %w", collection, id, err)
	}

	return nil
}

// Remove exclui um documento pelo id
func (c *Connection) Remove(ctx context.Context, collection, id string) error {
	if _, err := c.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("erro ao remover documento %s/%s: %w", collection, id, err)
	}

	return nil
}

// ApplyIncrements aplica um conjunto de incrementos atômicos em uma única
// escrita. Os incrementos são comutativos e livres de leitura: escritas
// concorrentes no mesmo documento nunca perdem atualizações.
func (c *Connection) ApplyIncrements(ctx context.Context, collection, id string, increments []Increment) error {
	updates := make([]firestore.Update, 0, len(increments))
	for _, inc := range increments {
		updates = append(updates, firestore.Update{Path: inc.Field, Value: firestore.Increment(inc.Delta)})
	}

	if _, err := c.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("erro ao incrementar campos de %s/%s: %w", collection, id, err)
	}

	return nil
}
