package sqlinline

const QSelectIntegrationToken = `--sql 1941da97-63c1-467d-9d35-09244c03edbb
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql aa85b174-5a07-4864-a420-1be1c48702b5
insert into integration_tokens (provider, token, properties, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
