package sqlinline

const QInsertLegalDocument = `--sql 218cb8e6-63f2-4078-80ec-c71cb8d71ced
insert into legal_documents (id, title, content, doc_type, tags, added_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text[], $6::timestamptz);
`

const QSearchLegalDocuments = `--sql f1487cbf-630d-4476-a6b4-accd959a106c
with q as (
    select plainto_tsquery('portuguese', $1::text) as query
)
select d.id, d.title, d.content, d.doc_type, d.tags, d.added_at, ts_rank(d.search, q.query) as rank
from legal_documents d, q
where d.search @@ q.query
order by rank desc, d.added_at desc
limit $2::int;
`

const QCountLegalDocuments = `--sql 079f2cf7-7a30-42af-896c-ff3b5e5d7333
select count(*)
from legal_documents;
`
